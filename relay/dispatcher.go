package relay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/franco-bianco/pumpfun-mirror/chain"
	"github.com/franco-bianco/pumpfun-mirror/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownService = errors.New("unknown confirmation service")
	ErrNoBlockhash    = errors.New("no recent blockhash available")
)

// Stage names the last dispatch step a Result reached.
type Stage string

const (
	StageSelect    Stage = "select_relay"
	StageInjectTip Stage = "inject_tip"
	StageBlockhash Stage = "fetch_blockhash"
	StageSign      Stage = "sign"
	StageSubmit    Stage = "submit"
)

// Result is the single reporting shape of every dispatch.
type Result struct {
	Service string
	OK      bool

	// ID is whatever the relay returned on success, normally the signature.
	ID string
	// Signature is the locally computed transaction signature once signed.
	Signature solana.Signature
	Message   string
	Stage     Stage
	Err       error
	Class     ErrorClass
}

// TipConfig is the per-process compute budget and tip applied to every
// dispatch. Zero compute units or priority fee omit that instruction. A nil
// TipPosition appends the tip after the trade instructions.
type TipConfig struct {
	ComputeUnits             uint32
	PriorityFeeMicroLamports uint64
	TipLamports              uint64
	TipAccountIndex          int
	TipPosition              *int
}

// BlockhashSource is satisfied by *chain.BlockhashCache.
type BlockhashSource interface {
	Get() (solana.Hash, bool)
}

// Dispatcher selects a relay by name and runs one single-attempt submission.
// Registration happens before use; Dispatch is safe for concurrent use.
type Dispatcher struct {
	relays    map[string]Relay
	blockhash BlockhashSource
	signer    solana.PrivateKey
	tips      TipConfig
	Log       *logrus.Logger
}

func NewDispatcher(signer solana.PrivateKey, blockhash BlockhashSource, tips TipConfig, log *logrus.Logger, relays ...Relay) *Dispatcher {
	d := &Dispatcher{
		relays:    make(map[string]Relay, len(relays)),
		blockhash: blockhash,
		signer:    signer,
		tips:      tips,
		Log:       log,
	}
	for _, r := range relays {
		d.Register(r)
	}
	return d
}

func (d *Dispatcher) Register(r Relay) {
	d.relays[r.Name()] = r
}

func (d *Dispatcher) Dispatch(ctx context.Context, service string, instructions []solana.Instruction) Result {
	res := d.dispatch(ctx, service, instructions)
	metrics.Dispatches.WithLabelValues(service, string(res.Stage), strconv.FormatBool(res.OK)).Inc()
	d.Log.WithFields(res.Fields()).Debug("relay dispatch")
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, service string, instructions []solana.Instruction) Result {
	res := Result{Service: service, Stage: StageSelect}

	r, ok := d.relays[service]
	if !ok {
		return res.fail(fmt.Errorf("%w: %s", ErrUnknownService, service))
	}

	res.Stage = StageInjectTip
	tips := Tips{
		Payer:           d.signer.PublicKey(),
		Instructions:    instructions,
		TipAccountIndex: d.tips.TipAccountIndex,
		TipLamports:     d.tips.TipLamports,
		TipPosition:     d.tips.TipPosition,
	}
	if d.tips.ComputeUnits > 0 {
		tips.ComputeUnits = pointer.ToUint32(d.tips.ComputeUnits)
	}
	if d.tips.PriorityFeeMicroLamports > 0 {
		tips.PriorityFeeMicroLamports = pointer.ToUint64(d.tips.PriorityFeeMicroLamports)
	}
	withTips, err := r.AddTipInstructions(tips)
	if err != nil {
		return res.fail(err)
	}

	res.Stage = StageBlockhash
	blockhash, ok := d.blockhash.Get()
	if !ok {
		return res.fail(ErrNoBlockhash)
	}

	res.Stage = StageSign
	tx, raw, err := chain.Assemble(withTips, blockhash, d.signer)
	if err != nil {
		return res.fail(err)
	}
	res.Signature = tx.Signatures[0]

	res.Stage = StageSubmit
	start := time.Now()
	id, err := r.SendTransaction(ctx, raw)
	metrics.SubmitLatency.WithLabelValues(service).Observe(time.Since(start).Seconds())
	if err != nil {
		return res.fail(err)
	}
	res.OK = true
	res.ID = id
	return res
}

func (r Result) fail(err error) Result {
	r.OK = false
	r.Err = err
	r.Message = err.Error()
	r.Class = Classify(err)
	return r
}

// Fields renders the result for structured logging.
func (r Result) Fields() logrus.Fields {
	f := logrus.Fields{
		"service": r.Service,
		"ok":      r.OK,
		"stage":   r.Stage,
	}
	if r.ID != "" {
		f["id"] = r.ID
	}
	if r.Signature != (solana.Signature{}) {
		f["signature"] = r.Signature.String()
	}
	if r.Message != "" {
		f["message"] = r.Message
		f["error_class"] = r.Class
	}
	return f
}
