package mirror

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/franco-bianco/pumpfun-mirror/metrics"
	"github.com/franco-bianco/pumpfun-mirror/pumpfun"
	"github.com/franco-bianco/pumpfun-mirror/relay"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
)

// buyFeeFactor covers the protocol fee on top of the buy budget.
const buyFeeFactor = 1.011

type Status string

const (
	StatusIgnored      Status = "ignored"
	StatusNotQualified Status = "not_qualified"
	StatusDispatched   Status = "dispatched"
)

// Outcome is the result of one Process call. Errors are reported separately.
type Outcome struct {
	Status Status
	Kind   pumpfun.InstructionKind
	Reason string

	Event        *pumpfun.TradeEvent
	TokenAmount  uint64
	SolAmount    uint64
	Instructions []solana.Instruction
	Result       relay.Result
}

type Dispatcher interface {
	Dispatch(ctx context.Context, service string, instructions []solana.Instruction) relay.Result
}

type BalanceQuerier interface {
	TokenBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (string, error)
}

type QuoteFunc func(amount, virtualSolReserves, virtualTokenReserves uint64, isBuy bool) (uint64, error)

type Config struct {
	// Wallet is the mirror wallet every observed trade is re-targeted to.
	Wallet      solana.PublicKey
	BuyLamports uint64
	Slippage    float64
	Service     string
}

// Controller mirrors observed pump.fun trades. It holds no mutable state and
// may be called concurrently.
type Controller struct {
	cfg        Config
	dispatcher Dispatcher
	balances   BalanceQuerier
	Log        *logrus.Logger

	solTokenQuote QuoteFunc
	tokenSolQuote QuoteFunc
}

func New(cfg Config, dispatcher Dispatcher, balances BalanceQuerier, log *logrus.Logger) *Controller {
	return &Controller{
		cfg:           cfg,
		dispatcher:    dispatcher,
		balances:      balances,
		Log:           log,
		solTokenQuote: pumpfun.SolTokenQuote,
		tokenSolQuote: pumpfun.TokenSolQuote,
	}
}

// Process handles one decoded top-level instruction. The only errors are
// trade events that carry the event tag but do not decode.
func (c *Controller) Process(ctx context.Context, ix *pumpfun.DecodedInstruction) (Outcome, error) {
	metrics.ObservedInstructions.WithLabelValues(string(ix.Kind)).Inc()

	var (
		out Outcome
		err error
	)
	switch ix.Kind {
	case pumpfun.KindBuy:
		out, err = c.processBuy(ctx, ix)
	case pumpfun.KindSell:
		out, err = c.processSell(ctx, ix)
	default:
		out = Outcome{Status: StatusIgnored}
	}
	out.Kind = ix.Kind

	fields := c.fields(ix, out)
	if err != nil {
		metrics.SchemaErrors.Inc()
		c.Log.WithFields(fields).Errorf("trade event schema violation: %v", err)
		return out, err
	}
	metrics.Outcomes.WithLabelValues(string(ix.Kind), string(out.Status)).Inc()

	switch out.Status {
	case StatusDispatched:
		for k, v := range out.Result.Fields() {
			fields["relay_"+k] = v
		}
		if out.Result.OK {
			c.Log.WithFields(fields).Info("mirror dispatched")
		} else {
			c.Log.WithFields(fields).Warn("mirror dispatch failed")
		}
	case StatusNotQualified:
		c.Log.WithFields(fields).Debug("not qualified")
	}
	return out, nil
}

func (c *Controller) processBuy(ctx context.Context, ix *pumpfun.DecodedInstruction) (Outcome, error) {
	accts, ok := pumpfun.ArrangeBuyAccounts(ix.Accounts)
	if !ok {
		return notQualified("buy accounts could not be arranged"), nil
	}
	if err := accts.Retarget(c.cfg.Wallet); err != nil {
		return notQualified(err.Error()), nil
	}

	ev, err := c.tradeEvent(ix)
	if err != nil {
		return Outcome{}, err
	}
	if ev == nil {
		return notQualified("no trade event"), nil
	}

	tokens, err := c.solTokenQuote(c.cfg.BuyLamports, ev.VirtualSolReserves, ev.VirtualTokenReserves, true)
	if err != nil {
		return eventNotQualified(ev, fmt.Sprintf("buy quote: %v", err)), nil
	}
	maxCost := clampLamports(float64(c.cfg.BuyLamports) * buyFeeFactor * (1 + c.cfg.Slippage))

	ixs := []solana.Instruction{
		accts.CreateAssociatedAccountIdempotent(),
		accts.Buy(pumpfun.BuyArgs{Amount: tokens, MaxSolCost: maxCost}),
	}
	return Outcome{
		Status:       StatusDispatched,
		Event:        ev,
		TokenAmount:  tokens,
		SolAmount:    maxCost,
		Instructions: ixs,
		Result:       c.dispatcher.Dispatch(ctx, c.cfg.Service, ixs),
	}, nil
}

func (c *Controller) processSell(ctx context.Context, ix *pumpfun.DecodedInstruction) (Outcome, error) {
	accts, ok := pumpfun.ArrangeSellAccounts(ix.Accounts)
	if !ok {
		return notQualified("sell accounts could not be arranged"), nil
	}
	if err := accts.Retarget(c.cfg.Wallet); err != nil {
		return notQualified(err.Error()), nil
	}

	ev, err := c.tradeEvent(ix)
	if err != nil {
		return Outcome{}, err
	}
	if ev == nil {
		return notQualified("no trade event"), nil
	}

	raw, err := c.balances.TokenBalance(ctx, accts.AssociatedUser, rpc.CommitmentProcessed)
	if err != nil {
		return eventNotQualified(ev, fmt.Sprintf("balance query: %v", err)), nil
	}
	balance, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return eventNotQualified(ev, fmt.Sprintf("unparsable balance %q", raw)), nil
	}
	if balance == 0 {
		return eventNotQualified(ev, "zero balance"), nil
	}

	sol, err := c.tokenSolQuote(balance, ev.VirtualSolReserves, ev.VirtualTokenReserves, false)
	if err != nil {
		return eventNotQualified(ev, fmt.Sprintf("sell quote: %v", err)), nil
	}
	minOut := clampLamports(float64(sol) * (1 - c.cfg.Slippage))

	closeIx, err := accts.CloseAssociatedAccount()
	if err != nil {
		return eventNotQualified(ev, fmt.Sprintf("close account: %v", err)), nil
	}
	ixs := []solana.Instruction{
		accts.Sell(pumpfun.SellArgs{Amount: balance, MinSolOutput: minOut}),
		closeIx,
	}
	return Outcome{
		Status:       StatusDispatched,
		Event:        ev,
		TokenAmount:  balance,
		SolAmount:    minOut,
		Instructions: ixs,
		Result:       c.dispatcher.Dispatch(ctx, c.cfg.Service, ixs),
	}, nil
}

func (c *Controller) tradeEvent(ix *pumpfun.DecodedInstruction) (*pumpfun.TradeEvent, error) {
	return pumpfun.FindTradeEvent(ix.Tx, ix.Index, pumpfun.PUMP_FUN_PROGRAM_ID, pumpfun.PUMP_FUN_EVENT_AUTHORITY)
}

func (c *Controller) fields(ix *pumpfun.DecodedInstruction, out Outcome) logrus.Fields {
	f := logrus.Fields{
		"kind":   ix.Kind,
		"status": out.Status,
	}
	if ix.Tx != nil {
		f["signature"] = ix.Tx.Signature.String()
		f["slot"] = ix.Tx.Slot
	}
	if out.Reason != "" {
		f["reason"] = out.Reason
	}
	if ev := out.Event; ev != nil {
		f["mint"] = ev.Mint.String()
		f["trader"] = ev.User.String()
		f["virtual_sol_reserves"] = ev.VirtualSolReserves
		f["virtual_token_reserves"] = ev.VirtualTokenReserves
	}
	if out.Status == StatusDispatched {
		f["token_amount"] = out.TokenAmount
		f["sol_amount"] = out.SolAmount
	}
	return f
}

func notQualified(reason string) Outcome {
	return Outcome{Status: StatusNotQualified, Reason: reason}
}

func eventNotQualified(ev *pumpfun.TradeEvent, reason string) Outcome {
	return Outcome{Status: StatusNotQualified, Reason: reason, Event: ev}
}

// clampLamports truncates v into the u64 range.
func clampLamports(v float64) uint64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(v)
}
