package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/starford/terminalart/internal/ledger"
	"github.com/starford/terminalart/internal/ledger/mocks"
	"github.com/starford/terminalart/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func found(id uint64, username string) ledger.Result {
	return ledger.Result{ID: id, Record: models.Record{
		ID:        id,
		Username:  username,
		Text:      "msg",
		Timestamp: 1737909240,
		Color:     [3]byte{0x00, 0xff, 0x00},
	}}
}

func absent(id uint64) ledger.Result {
	return ledger.Result{ID: id, Err: ledger.ErrAbsent}
}

func ids(w models.Window) []uint64 {
	out := make([]uint64, 0, len(w.Entries))
	for _, e := range w.Entries {
		out = append(out, e.ID)
	}
	return out
}

func TestCandidates(t *testing.T) {
	require.Equal(t, []uint64{7, 8, 9, 10, 11, 12, 13}, Candidates(10, 3))
	require.Equal(t, []uint64{1, 2, 3, 4}, Candidates(1, 3))
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, Candidates(2, 3))
	require.Equal(t, []uint64{5}, Candidates(5, 0))
	require.Equal(t, []uint64{5}, Candidates(5, -2))
	require.Nil(t, Candidates(0, 3))
	require.Equal(t, []uint64{math.MaxUint64 - 3, math.MaxUint64 - 2, math.MaxUint64 - 1, math.MaxUint64}, Candidates(math.MaxUint64, 3))
	require.Equal(t, []uint64{math.MaxUint64 - 2, math.MaxUint64 - 1, math.MaxUint64}, Candidates(math.MaxUint64-1, 1))
}

func TestAssemble_SkipsMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().ReadMany(gomock.Any(), []uint64{7, 8, 9, 10, 11, 12, 13}).Return([]ledger.Result{
		absent(7), found(8, "a"), found(9, "b"), found(10, "c"), found(11, "d"), absent(12), absent(13),
	})

	a := NewAssembler(reader, testLogger())
	w := a.Assemble(context.Background(), Request{Target: 10, HalfWidth: 3})

	require.Equal(t, []uint64{8, 9, 10, 11}, ids(w))
	require.True(t, w.HasTarget())
	e, _ := w.TargetEntry()
	require.Equal(t, "#00ff00", e.Color)
	require.Equal(t, "2025.01.26 16:34", e.Stamp)
	require.False(t, e.Synthesized)
}

func TestAssemble_FallbackSynthesizesTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().ReadMany(gomock.Any(), []uint64{4, 5, 6}).Return([]ledger.Result{
		found(4, "a"), absent(5), absent(6),
	})

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := NewAssembler(reader, testLogger(), WithClock(func() time.Time { return now }))
	w := a.Assemble(context.Background(), Request{
		Target:    5,
		HalfWidth: 1,
		Fallback:  &models.Fallback{Username: "x", Text: "y"},
	})

	require.Equal(t, []uint64{4, 5}, ids(w))
	e, ok := w.TargetEntry()
	require.True(t, ok)
	require.True(t, e.Synthesized)
	require.Equal(t, "x", e.Username)
	require.Equal(t, "y", e.Text)
	require.Equal(t, "#00FF00", e.Color)
	require.Equal(t, now.Unix(), e.Posted)
	require.Equal(t, "2025.03.01 12:00", e.Stamp)
}

func TestAssemble_TopOfRangeHasNoWrappedNeighbours(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().ReadMany(gomock.Any(), []uint64{math.MaxUint64 - 1, math.MaxUint64}).Return([]ledger.Result{
		absent(math.MaxUint64 - 1), absent(math.MaxUint64),
	})

	a := NewAssembler(reader, testLogger())
	w := a.Assemble(context.Background(), Request{
		Target:    math.MaxUint64,
		HalfWidth: 1,
		Fallback:  &models.Fallback{Username: "x", Text: "y"},
	})

	require.Equal(t, []uint64{math.MaxUint64}, ids(w))
}

func TestAssemble_FallbackColorAndTimestamp(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().ReadMany(gomock.Any(), []uint64{3}).Return([]ledger.Result{absent(3)})

	ts := int64(1737909240)
	a := NewAssembler(reader, testLogger())
	w := a.Assemble(context.Background(), Request{
		Target:   3,
		Fallback: &models.Fallback{Username: "x", Text: "y", Color: "#000000", Timestamp: &ts},
	})

	e, ok := w.TargetEntry()
	require.True(t, ok)
	require.Equal(t, "#00FF00", e.Color, "near-black fallback color is replaced")
	require.Equal(t, "2025.01.26 16:34", e.Stamp)
}

func TestAssemble_NoFallbackLeavesTargetAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().ReadMany(gomock.Any(), []uint64{4, 5, 6}).Return([]ledger.Result{
		found(4, "a"), absent(5), found(6, "c"),
	})

	a := NewAssembler(reader, testLogger())
	w := a.Assemble(context.Background(), Request{Target: 5, HalfWidth: 1})

	require.Equal(t, []uint64{4, 6}, ids(w))
	require.False(t, w.HasTarget())
}

func TestAssemble_IncompleteFallbackIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().ReadMany(gomock.Any(), []uint64{5}).Return([]ledger.Result{absent(5)})

	a := NewAssembler(reader, testLogger())
	w := a.Assemble(context.Background(), Request{Target: 5, Fallback: &models.Fallback{Username: "x"}})
	require.Empty(t, w.Entries)
}

func TestAssemble_LedgerWinsOverFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().ReadMany(gomock.Any(), []uint64{5}).Return([]ledger.Result{found(5, "onchain")})

	a := NewAssembler(reader, testLogger())
	w := a.Assemble(context.Background(), Request{
		Target:   5,
		Fallback: &models.Fallback{Username: "client", Text: "stale"},
	})

	require.Len(t, w.Entries, 1)
	require.Equal(t, "onchain", w.Entries[0].Username)
	require.False(t, w.Entries[0].Synthesized)
}

func TestAssemble_TransientFailureIsolated(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().ReadMany(gomock.Any(), []uint64{1, 2, 3}).Return([]ledger.Result{
		found(1, "a"), {ID: 2, Err: errors.New("rpc timeout")}, found(3, "c"),
	})

	a := NewAssembler(reader, testLogger())
	w := a.Assemble(context.Background(), Request{Target: 2, HalfWidth: 1})
	require.Equal(t, []uint64{1, 3}, ids(w))
}

func TestAssemble_NoTargetSkipsReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)

	total := uint64(9)
	a := NewAssembler(reader, testLogger())
	w := a.Assemble(context.Background(), Request{Target: 0, HalfWidth: 3, Total: &total})
	require.Empty(t, w.Entries)
	require.Equal(t, &total, w.Total)
}
