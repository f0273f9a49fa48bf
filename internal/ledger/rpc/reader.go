// Package rpc reads records from the message contract over Ethereum
// JSON-RPC. Window reads are sent as a single JSON-RPC batch of eth_call
// requests so that one failing identifier does not affect the others.
package rpc

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/starford/terminalart/internal/ledger"
	"github.com/starford/terminalart/internal/models"
)

// Caller is the subset of *rpc.Client the reader needs.
type Caller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
	BatchCallContext(ctx context.Context, b []gethrpc.BatchElem) error
}

// message mirrors the contract's Message tuple.
type message struct {
	Id            *big.Int
	Author        common.Address
	Fid           *big.Int
	Username      string
	Text          string
	Timestamp     *big.Int
	UsernameColor [3]byte
}

type callArgs struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// Reader implements ledger.Reader against a deployed contract.
type Reader struct {
	caller   Caller
	contract common.Address
	abi      abi.ABI
	timeout  time.Duration
}

var _ ledger.Reader = (*Reader)(nil)

// Dial connects to the JSON-RPC endpoint at url.
func Dial(ctx context.Context, url, contract string, timeout time.Duration) (*Reader, error) {
	client, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", url, err)
	}
	return New(client, contract, timeout)
}

// New wraps an existing caller.
func New(caller Caller, contract string, timeout time.Duration) (*Reader, error) {
	if !common.IsHexAddress(contract) {
		return nil, fmt.Errorf("rpc: invalid contract address %q", contract)
	}
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("rpc: parse abi: %w", err)
	}
	return &Reader{
		caller:   caller,
		contract: common.HexToAddress(contract),
		abi:      parsed,
		timeout:  timeout,
	}, nil
}

// Close releases the connection when the caller owns one.
func (r *Reader) Close() {
	if c, ok := r.caller.(interface{ Close() }); ok {
		c.Close()
	}
}

// ReadMany issues one batch of getMessage calls. A record whose username
// is empty is reported as absent: the contract returns a zero tuple for
// identifiers it never minted.
func (r *Reader) ReadMany(ctx context.Context, ids []uint64) []ledger.Result {
	out := make([]ledger.Result, len(ids))
	if len(ids) == 0 {
		return out
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	batch := make([]gethrpc.BatchElem, 0, len(ids))
	slots := make([]int, 0, len(ids))
	for i, id := range ids {
		out[i].ID = id
		data, err := r.abi.Pack("getMessage", new(big.Int).SetUint64(id))
		if err != nil {
			out[i].Err = fmt.Errorf("rpc: pack getMessage(%d): %w", id, err)
			continue
		}
		batch = append(batch, gethrpc.BatchElem{
			Method: "eth_call",
			Args:   []any{callArgs{To: r.contract, Data: data}, "latest"},
			Result: new(hexutil.Bytes),
		})
		slots = append(slots, i)
	}

	if len(batch) == 0 {
		return out
	}
	if err := r.caller.BatchCallContext(ctx, batch); err != nil {
		for _, i := range slots {
			out[i].Err = fmt.Errorf("rpc: batch: %w", err)
		}
		return out
	}

	for n, elem := range batch {
		i := slots[n]
		if elem.Error != nil {
			out[i].Err = fmt.Errorf("rpc: getMessage(%d): %w", ids[i], elem.Error)
			continue
		}
		rec, err := r.decodeMessage(*elem.Result.(*hexutil.Bytes))
		if err != nil {
			out[i].Err = fmt.Errorf("rpc: getMessage(%d): %w", ids[i], err)
			continue
		}
		rec.ID = ids[i]
		out[i].Record = rec
	}
	return out
}

// Count calls getMessageCount.
func (r *Reader) Count(ctx context.Context) (uint64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	data, err := r.abi.Pack("getMessageCount")
	if err != nil {
		return 0, fmt.Errorf("rpc: pack getMessageCount: %w", err)
	}
	var raw hexutil.Bytes
	if err := r.caller.CallContext(ctx, &raw, "eth_call", callArgs{To: r.contract, Data: data}, "latest"); err != nil {
		return 0, fmt.Errorf("rpc: getMessageCount: %w", err)
	}
	vals, err := r.abi.Methods["getMessageCount"].Outputs.Unpack(raw)
	if err != nil {
		return 0, fmt.Errorf("rpc: unpack getMessageCount: %w", err)
	}
	n, ok := vals[0].(*big.Int)
	if !ok || !n.IsUint64() {
		return 0, fmt.Errorf("rpc: getMessageCount: unexpected value %v", vals[0])
	}
	return n.Uint64(), nil
}

func (r *Reader) decodeMessage(raw []byte) (models.Record, error) {
	if len(raw) == 0 {
		return models.Record{}, ledger.ErrAbsent
	}
	vals, err := r.abi.Methods["getMessage"].Outputs.Unpack(raw)
	if err != nil {
		return models.Record{}, fmt.Errorf("unpack: %w", err)
	}
	msg := *abi.ConvertType(vals[0], new(message)).(*message)
	if msg.Username == "" {
		return models.Record{}, ledger.ErrAbsent
	}
	return models.Record{
		Author:    msg.Author.Hex(),
		FID:       bigUint(msg.Fid),
		Username:  msg.Username,
		Text:      msg.Text,
		Timestamp: int64(bigUint(msg.Timestamp)),
		Color:     msg.UsernameColor,
	}, nil
}

func (r *Reader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func bigUint(v *big.Int) uint64 {
	if v == nil || !v.IsUint64() {
		return 0
	}
	return v.Uint64()
}
