package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/starford/terminalart/internal/apperr"
	"github.com/starford/terminalart/internal/ledger"
	"github.com/starford/terminalart/internal/ledger/mocks"
	"github.com/starford/terminalart/internal/models"
)

func TestReadOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	ctx := context.Background()

	reader.EXPECT().ReadMany(ctx, []uint64{7}).Return([]ledger.Result{
		{ID: 7, Record: models.Record{ID: 7, Username: "anon", Text: "hi"}},
	})
	rec, err := ledger.ReadOne(ctx, reader, 7)
	require.NoError(t, err)
	require.Equal(t, "hi", rec.Text)

	reader.EXPECT().ReadMany(ctx, []uint64{8}).Return([]ledger.Result{{ID: 8, Err: ledger.ErrAbsent}})
	_, err = ledger.ReadOne(ctx, reader, 8)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	reader.EXPECT().ReadMany(ctx, []uint64{9}).Return(nil)
	_, err = ledger.ReadOne(ctx, reader, 9)
	require.ErrorIs(t, err, ledger.ErrAbsent)
}

func TestLatest(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	ctx := context.Background()

	reader.EXPECT().Count(ctx).Return(uint64(4), nil)
	reader.EXPECT().ReadMany(ctx, []uint64{4, 3, 2}).Return([]ledger.Result{
		{ID: 4, Record: models.Record{ID: 4}},
		{ID: 3, Err: errors.New("execution reverted")},
		{ID: 2, Record: models.Record{ID: 2}},
	})

	recs, total, err := ledger.Latest(ctx, reader, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(4), total)
	require.Len(t, recs, 2)
	require.Equal(t, uint64(4), recs[0].ID)
	require.Equal(t, uint64(2), recs[1].ID)
}

func TestLatest_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	ctx := context.Background()

	reader.EXPECT().Count(ctx).Return(uint64(0), nil)
	recs, total, err := ledger.Latest(ctx, reader, 15)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, recs)
}

func TestLatest_CountFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)

	reader.EXPECT().Count(gomock.Any()).Return(uint64(0), errors.New("dial tcp: refused"))
	_, _, err := ledger.Latest(context.Background(), reader, 15)
	require.ErrorContains(t, err, "ledger: count")
}
