package types

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func testAddr(name string) string {
	bz := make([]byte, 20)
	copy(bz, name)
	return sdk.AccAddress(bz).String()
}

func activeHolder(balance, mark int64) *Holder {
	h := NewHolder(testAddr("holder"))
	h.Balance = math.NewInt(balance)
	h.Mark = math.NewInt(mark)
	return h
}

func TestHolderCredit(t *testing.T) {
	h := NewHolder(testAddr("holder"))
	require.ErrorIs(t, h.Credit(math.NewInt(10), math.ZeroInt()), ErrCorruptHolder)
	require.ErrorIs(t, h.Credit(math.ZeroInt(), math.NewInt(5)), ErrZeroAmount)

	require.NoError(t, h.Credit(math.NewInt(10), math.NewInt(5)))
	require.Equal(t, int64(5), h.Mark.Int64())

	// an active holder keeps its mark
	require.NoError(t, h.Credit(math.NewInt(10), math.NewInt(9)))
	require.Equal(t, int64(20), h.Balance.Int64())
	require.Equal(t, int64(5), h.Mark.Int64())
	require.NoError(t, h.Validate())
}

func TestHolderDebit(t *testing.T) {
	h := activeHolder(100, 7)
	require.NoError(t, h.Lock(math.NewInt(40)))

	require.ErrorIs(t, h.Debit(math.NewInt(61)), ErrSharesLocked)
	require.ErrorIs(t, h.Debit(math.NewInt(101)), ErrInsufficientShares)
	require.ErrorIs(t, h.Debit(math.ZeroInt()), ErrZeroAmount)

	require.NoError(t, h.Debit(math.NewInt(60)))
	require.Equal(t, int64(40), h.Balance.Int64())
	require.Equal(t, int64(7), h.Mark.Int64())

	h.Unlock(math.NewInt(40))
	require.NoError(t, h.Debit(math.NewInt(40)))
	require.True(t, h.IsEmpty())
	require.True(t, h.Mark.IsZero())
	require.NoError(t, h.Validate())
}

func TestHolderReceive(t *testing.T) {
	h := NewHolder(testAddr("holder"))
	require.NoError(t, h.Receive(math.NewInt(10), math.NewInt(300)))
	require.Equal(t, int64(300), h.Mark.Int64())

	require.NoError(t, h.Receive(math.NewInt(30), math.NewInt(100)))
	require.Equal(t, int64(150), h.Mark.Int64())
	require.Equal(t, int64(40), h.Balance.Int64())

	require.ErrorIs(t, h.Receive(math.NewInt(1), math.ZeroInt()), ErrCorruptHolder)
}

func TestHolderAdvanceMark(t *testing.T) {
	h := activeHolder(10, 100)
	h.AdvanceMark(math.NewInt(90))
	require.Equal(t, int64(100), h.Mark.Int64())
	h.AdvanceMark(math.NewInt(120))
	require.Equal(t, int64(120), h.Mark.Int64())

	empty := NewHolder(testAddr("empty"))
	empty.AdvanceMark(math.NewInt(120))
	require.True(t, empty.Mark.IsZero())
}

func TestHolderLocks(t *testing.T) {
	h := activeHolder(50, 1)
	require.ErrorIs(t, h.Lock(math.NewInt(51)), ErrInsufficientShares)
	require.NoError(t, h.Lock(math.NewInt(30)))
	require.Equal(t, int64(20), h.Spendable().Int64())

	h.Unlock(math.NewInt(100))
	require.True(t, h.Locked.IsZero())
}

func TestHolderValidate(t *testing.T) {
	testCases := []struct {
		name   string
		holder func() *Holder
		valid  bool
	}{
		{"empty", func() *Holder { return NewHolder(testAddr("a")) }, true},
		{"active", func() *Holder { return activeHolder(10, 1) }, true},
		{"balance without mark", func() *Holder { return activeHolder(10, 0) }, false},
		{"mark without balance", func() *Holder { return activeHolder(0, 1) }, false},
		{"locked over balance", func() *Holder {
			h := activeHolder(10, 1)
			h.Locked = math.NewInt(11)
			return h
		}, false},
		{"nil field", func() *Holder {
			h := activeHolder(10, 1)
			h.CapRemaining = math.Int{}
			return h
		}, false},
		{"negative balance", func() *Holder { return activeHolder(-1, 1) }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.holder().Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrCorruptHolder)
			}
		})
	}
}

func TestHolderCapacity(t *testing.T) {
	h := NewHolder(testAddr("holder"))

	// no default cap: the ledger stays off
	h.EnsureCap(math.ZeroInt())
	require.NoError(t, h.ConsumeCap(math.NewInt(1_000_000)))
	require.False(t, h.CapSet)

	h.EnsureCap(math.NewInt(100))
	require.NoError(t, h.ConsumeCap(math.NewInt(60)))
	require.ErrorIs(t, h.ConsumeCap(math.NewInt(50)), ErrDepositCapExceeded)

	// only the first touch initializes
	h.EnsureCap(math.NewInt(1000))
	require.Equal(t, int64(100), h.CapInitial.Int64())

	h.RestoreCap(math.NewInt(100))
	require.Equal(t, int64(100), h.CapRemaining.Int64())

	require.NoError(t, h.ConsumeCap(math.NewInt(60)))
	h.SetCap(math.NewInt(150))
	require.Equal(t, int64(90), h.CapRemaining.Int64())

	h.SetCap(math.NewInt(30))
	require.Equal(t, int64(30), h.CapInitial.Int64())
	require.Equal(t, int64(30), h.CapRemaining.Int64())

	fresh := NewHolder(testAddr("fresh"))
	fresh.SetCap(math.NewInt(5))
	require.True(t, fresh.CapSet)
	require.Equal(t, int64(5), fresh.CapRemaining.Int64())
}
