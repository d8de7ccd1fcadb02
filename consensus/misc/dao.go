// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package misc

import (
	"math/big"

	"github.com/basalt-chain/basalt-evm/core/state"
	"github.com/ethereum/go-ethereum/common"
)

// DAORefundContract is the address of the refund contract the drained DAO
// balances move to at the fork block.
var DAORefundContract = common.HexToAddress("0xbf4ed7b27f1d666546e30d74d50d173d20bca754")

// DAODrainList is filled in by the chain configuration with the accounts
// drained at the fork block. The mainnet list is long and lives with the
// embedder; the core only applies whatever it is handed.
var DAODrainList []common.Address

// ApplyDAOHardFork modifies the state database according to the DAO hard-fork
// rules, transferring all balances of a set of DAO accounts to a single refund
// contract.
func ApplyDAOHardFork(statedb *state.StateDB) {
	// Retrieve the contract to refund balances into
	if !statedb.Exist(DAORefundContract) {
		statedb.CreateAccount(DAORefundContract)
	}
	// Move every DAO account and extra-balance account funds into the refund contract
	for _, addr := range DAODrainList {
		statedb.AddBalance(DAORefundContract, statedb.GetBalance(addr))
		statedb.SetBalance(addr, new(big.Int))
	}
}
