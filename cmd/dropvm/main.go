// Command dropvm drives a single top-level bytecode execution through the
// interpreter and prints the resulting vm.Result, for ad-hoc inspection of
// a contract's drop accounting and output outside of the test suite.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/thodyssey/dropvm/core/state"
	"github.com/thodyssey/dropvm/core/vm"
	"github.com/thodyssey/dropvm/params"
	"github.com/thodyssey/dropvm/precompiles"
	"github.com/thodyssey/dropvm/word"
)

var (
	codeFlag = &cli.StringFlag{
		Name:     "code",
		Usage:    "contract bytecode, hex-encoded (0x-prefixed or not)",
		Required: true,
	}
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "call data, hex-encoded",
	}
	ownerFlag = &cli.StringFlag{
		Name:  "owner",
		Usage: "address the code executes as",
		Value: "0x0000000000000000000000000000000000000001",
	}
	callerFlag = &cli.StringFlag{
		Name:  "caller",
		Usage: "address of the immediate caller",
		Value: "0x0000000000000000000000000000000000000002",
	}
	valueFlag = &cli.Uint64Flag{
		Name:  "value",
		Usage: "call value, in drops",
	}
	dropLimitFlag = &cli.Uint64Flag{
		Name:  "drop-limit",
		Usage: "drops made available to the top-level frame",
		Value: 1_000_000,
	}
	staticFlag = &cli.BoolFlag{
		Name:  "static",
		Usage: "run under the static-call write restriction",
	}
	verboseFlag = &cli.BoolFlag{
		Name:  "verbose",
		Usage: "log each executed step",
	}
)

func main() {
	app := &cli.App{
		Name:  "dropvm",
		Usage: "execute a single contract call against the drop-accounted interpreter",
		Flags: []cli.Flag{codeFlag, inputFlag, ownerFlag, callerFlag, valueFlag, dropLimitFlag, staticFlag, verboseFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Bool(verboseFlag.Name) {
		log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, log.LevelDebug, true)))
	}

	code, err := decodeHex(ctx.String(codeFlag.Name))
	if err != nil {
		return fmt.Errorf("--code: %w", err)
	}
	input, err := decodeHex(ctx.String(inputFlag.Name))
	if err != nil {
		return fmt.Errorf("--input: %w", err)
	}
	owner := common.HexToAddress(ctx.String(ownerFlag.Name))
	caller := common.HexToAddress(ctx.String(callerFlag.Name))

	cfg := params.DefaultChainConfig()
	db := state.NewMemoryState()
	db.CreateAccount(owner, code)
	db.StartTopLevelCall()
	block := state.NewStaticBlock(common.Address{}, 0, 1, word.Zero(), cfg.DropCosts.CALL)

	var tracer vm.Tracer
	if ctx.Bool(verboseFlag.Name) {
		tracer = stepLogger{}
	}

	icfg := cfg.InterpreterConfig()
	icfg.State = db
	icfg.Block = block
	icfg.Precompiles = precompiles.NewFrontierRegistry()
	icfg.Tracer = tracer
	in := vm.NewInterpreter(icfg)

	res, err := vm.Execute(in, vm.ExecuteRequest{
		Code:      code,
		Owner:     owner,
		Caller:    caller,
		Origin:    caller,
		CallValue: word.FromUint64(ctx.Uint64(valueFlag.Name)),
		Input:     input,
		DropLimit: ctx.Uint64(dropLimitFlag.Name),
		Static:    ctx.Bool(staticFlag.Name),
	})
	if err != nil {
		// A HostFatal escapes Execute untouched; this is the one place it
		// is meant to surface, as a controlled process exit rather than a
		// panic or a silently-swallowed error.
		return fmt.Errorf("host fatal: %w", err)
	}

	printResult(res)
	return nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func printResult(res vm.Result) {
	fmt.Printf("halted:     %v\n", res.Halted)
	fmt.Printf("reverted:   %v\n", res.Reverted)
	fmt.Printf("dropsUsed:  %d\n", res.DropsUsed)
	fmt.Printf("refund:     %d\n", res.Refund)
	fmt.Printf("steps:      %d\n", res.StepCount)
	fmt.Printf("returnData: 0x%x\n", res.ReturnData)
	if res.RuntimeFailure != nil {
		fmt.Printf("failure:    %v\n", res.RuntimeFailure)
	}
	for i, l := range res.Logs {
		topics := make([]string, len(l.Topics))
		for j, t := range l.Topics {
			topics[j] = t.String()
		}
		fmt.Printf("log[%d]: addr=%s topics=%s data=0x%x\n", i, l.Address, strings.Join(topics, ","), l.Data)
	}
}

// stepLogger emits one structured log line per executed opcode.
type stepLogger struct{}

func (stepLogger) CaptureStep(pc uint64, op vm.OpCode, dropsLeft uint64, stack *vm.Stack, memSize int, hint string) {
	log.Debug("step", "pc", strconv.FormatUint(pc, 10), "op", op.String(), "dropsLeft", dropsLeft, "memSize", memSize, "hint", hint)
}
