// Copyright 2015 The go-ethereum Authors
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

package params

const (
	GasLimitBoundDivisor uint64 = 1024 // The bound divisor of the gas limit, used in update calculations.
	MinGasLimit          uint64 = 5000 // Minimum the gas limit may ever be.

	MaximumExtraDataSize uint64 = 32 // Maximum size extra data may be after Genesis.

	TxGas                 uint64 = 21000 // Per transaction not creating a contract.
	TxGasContractCreation uint64 = 53000 // Per transaction that creates a contract.
	TxDataZeroGas         uint64 = 4     // Per byte of data attached to a transaction that equals zero.
	TxDataNonZeroGasFrontier uint64 = 68 // Per byte of data attached to a transaction that is not equal to zero.
	TxDataNonZeroGasEIP2028  uint64 = 16 // Per non-zero byte after Istanbul.
	TxAccessListAddressGas   uint64 = 2400 // Per address in an EIP-2930 access list.
	TxAccessListStorageKeyGas uint64 = 1900 // Per storage key in an EIP-2930 access list.

	QuadCoeffDiv uint64 = 512 // Divisor for the quadratic particle of the memory cost equation.

	ExpByteGasFrontier uint64 = 10 // Times ceil(log256(exponent)) for the EXP instruction.
	ExpByteGasEIP158   uint64 = 50 // Repriced by EIP-160.
	ExpGas             uint64 = 10 // Once per EXP instruction.

	SloadGasFrontier uint64 = 50
	SloadGasEIP150   uint64 = 200
	SloadGasEIP1884  uint64 = 800
	SloadGasEIP2200  uint64 = 800

	CallValueTransferGas  uint64 = 9000  // Paid for CALL when the value transfer is non-zero.
	CallNewAccountGas     uint64 = 25000 // Paid for CALL when the destination address didn't exist prior.
	CallStipend           uint64 = 2300  // Free gas given at beginning of value-transferring call.
	CallGasFrontier       uint64 = 40    // Once per CALL operation & message call transaction.
	CallGasEIP150         uint64 = 700   // Static portion of the call cost after Tangerine.

	BalanceGasFrontier uint64 = 20
	BalanceGasEIP150   uint64 = 400
	BalanceGasEIP1884  uint64 = 700
	ExtcodeSizeGasFrontier uint64 = 20
	ExtcodeSizeGasEIP150   uint64 = 700
	ExtcodeCopyBaseFrontier uint64 = 20
	ExtcodeCopyBaseEIP150   uint64 = 700
	ExtcodeHashGasConstantinople uint64 = 400
	ExtcodeHashGasEIP1884        uint64 = 700

	SstoreSetGas    uint64 = 20000 // Once per SSTORE operation from zero to non-zero.
	SstoreResetGas  uint64 = 5000  // Once per SSTORE operation from non-zero to anything else.
	SstoreClearGas  uint64 = 5000  // Once per SSTORE operation from non-zero to zero.
	SstoreRefundGas uint64 = 15000 // Once per SSTORE operation that clears non-zero to zero.

	// EIP-2200 net gas metering.
	SstoreSentryGasEIP2200            uint64 = 2300
	SstoreSetGasEIP2200               uint64 = 20000
	SstoreResetGasEIP2200             uint64 = 5000
	SstoreClearsScheduleRefundEIP2200 uint64 = 15000

	// EIP-2929 cold/warm access costs.
	ColdAccountAccessCostEIP2929 uint64 = 2600
	ColdSloadCostEIP2929         uint64 = 2100
	WarmStorageReadCostEIP2929   uint64 = 100

	// EIP-3529: refund for clearing a slot whose pre-tx value was non-zero.
	// SstoreResetGasEIP2200 - ColdSloadCostEIP2929 + TxAccessListStorageKeyGas.
	SstoreClearsScheduleRefundEIP3529 uint64 = 4800

	JumpdestGas   uint64 = 1
	LogGas        uint64 = 375 // Per LOG* operation.
	LogTopicGas   uint64 = 375 // Multiplied by the * of the LOG*.
	LogDataGas    uint64 = 8   // Per byte in a LOG* operation's data.
	Keccak256Gas     uint64 = 30 // Once per KECCAK256 operation.
	Keccak256WordGas uint64 = 6  // Per word of the KECCAK256 operation's data.
	CopyGas       uint64 = 3 // Per word copied by CALLDATACOPY, CODECOPY etc, rounded up.
	MemoryGas     uint64 = 3 // Times the address of the (highest referenced byte in memory + 1).

	CreateGas         uint64 = 32000 // Once per CREATE operation & contract-creation transaction.
	CreateDataGas     uint64 = 200   // Per byte of the created contract's code.
	Create2Gas        uint64 = 32000
	SelfdestructGasEIP150       uint64 = 5000  // Charged by SELFDESTRUCT after Tangerine.
	CreateBySelfdestructGas     uint64 = 25000 // Extra when SELFDESTRUCT sends to a fresh account.
	SelfdestructRefundGas       uint64 = 24000 // Refunded per SELFDESTRUCT; gone from London.

	TierStepGas uint64 = 0 // Legacy gas tier placeholder for zero-cost ops.

	RefundQuotient        uint64 = 2 // Pre-London gas-used divisor capping refunds.
	RefundQuotientEIP3529 uint64 = 5 // London+ cap divisor.

	StackLimit      uint64 = 1024 // Maximum size of the VM stack allowed.
	CallCreateDepth uint64 = 1024 // Maximum depth of call/create stack.

	MaxCodeSize = 24576 // Maximum bytecode to permit for a contract (EIP-170).

	// EIP-1559 parameters.
	GenesisBaseFee                   = 1000000000 // Base fee of the first London block.
	ElasticityMultiplier      uint64 = 2          // Gas-limit elasticity at the London transition.
	BaseFeeChangeDenominator  uint64 = 8          // Bounds the base fee delta between consecutive blocks.

	// Precompile pricing.
	EcrecoverGas        uint64 = 3000
	Sha256BaseGas       uint64 = 60
	Sha256PerWordGas    uint64 = 12
	Ripemd160BaseGas    uint64 = 600
	Ripemd160PerWordGas uint64 = 120
	IdentityBaseGas     uint64 = 15
	IdentityPerWordGas  uint64 = 3
	ModExpQuadCoeffDiv  uint64 = 20 // Divisor of the Byzantium MODEXP formula.
	Bn256AddGasByzantium        uint64 = 500
	Bn256AddGasIstanbul         uint64 = 150
	Bn256ScalarMulGasByzantium  uint64 = 40000
	Bn256ScalarMulGasIstanbul   uint64 = 6000
	Bn256PairingBaseGasByzantium     uint64 = 100000
	Bn256PairingBaseGasIstanbul      uint64 = 45000
	Bn256PairingPerPointGasByzantium uint64 = 80000
	Bn256PairingPerPointGasIstanbul  uint64 = 34000
	Blake2FInputLength               = 213
)

// Block rewards per fork window, in wei.
var (
	FrontierBlockReward       = newWei(5e+18) // Pre-Byzantium.
	ByzantiumBlockReward      = newWei(3e+18) // EIP-649.
	ConstantinopleBlockReward = newWei(2e+18) // EIP-1234, through Paris.
)
