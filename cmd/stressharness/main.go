// Command stressharness boots the engine against one cluster/program
// and drives it from a line-oriented operator console, standing in for
// the JSON-RPC/HTTP surface that owns this system in production. Each
// command maps one-to-one onto a canonical JSON-RPC operation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fixedratiolabs/frt-stress/configs"
	"github.com/fixedratiolabs/frt-stress/internal/engine"
	"github.com/fixedratiolabs/frt-stress/internal/errclass"
	"github.com/fixedratiolabs/frt-stress/internal/logging"
	"github.com/fixedratiolabs/frt-stress/internal/metrics"
	"github.com/fixedratiolabs/frt-stress/internal/model"
	"github.com/fixedratiolabs/frt-stress/internal/ratiomath"
	"github.com/fixedratiolabs/frt-stress/internal/reporting"
	"github.com/fixedratiolabs/frt-stress/internal/rpcgateway"
	"github.com/fixedratiolabs/frt-stress/internal/store"
	"github.com/fixedratiolabs/frt-stress/internal/worker"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("STRESSHARNESS_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yml"
	}
	cfg, err := configs.LoadConfig(configPath, nil)
	if err != nil {
		panic(err)
	}

	passphrase := os.Getenv("WALLET_PASSPHRASE")
	if passphrase == "" {
		panic("WALLET_PASSPHRASE not set")
	}

	log := logging.Stdout("stressharness")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gw, err := rpcgateway.New(ctx, rpcgateway.Config{
		RPCURL:             cfg.RPCURL,
		WSURL:              cfg.WSURL,
		Commitment:         rpc.CommitmentType(cfg.Commitment),
		PoolSize:           cfg.RPCPoolSize,
		AllowSkipPreflight: cfg.AllowSkipPreflight,
	})
	if err != nil {
		panic(err)
	}

	st, err := store.New(cfg.DataDirectory, passphrase)
	if err != nil {
		panic(err)
	}

	var recorder reporting.Recorder = reporting.Noop()
	if cfg.MySQLDSN != "" {
		mysqlRecorder, err := reporting.NewMySQLRecorder(cfg.MySQLDSN)
		if err != nil {
			panic(err)
		}
		recorder = reporting.NewAsync(mysqlRecorder, logging.Stdout("reporting"))
	}
	defer recorder.Close()

	mtr := metrics.New(prometheus.DefaultRegisterer)

	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		panic(fmt.Errorf("invalid program_id: %w", err))
	}

	eng := engine.New(programID, gw, st, mtr, log, recorder, engine.Config{
		TargetActivePools: cfg.TargetActivePools,
		SecretPassphrase:  passphrase,
		WorkerConfig: worker.Config{
			MinSOLBalance:       cfg.MinSOLBalance,
			SOLAirdropAmount:    cfg.SOLAirdropAmount,
			AutoRefillThreshold: cfg.AutoRefillThreshold,
			MaxSwapPercent:      cfg.MaxSwapPercent,
			MaxDepositPercent:   cfg.MaxDepositPercent,
			MaxWithdrawPercent:  worker.DefaultConfig().MaxWithdrawPercent,
			MinDelayMS:          cfg.MinDelayMS,
			MaxDelayMS:          cfg.MaxDelayMS,
			PersistEveryNOps:    worker.DefaultConfig().PersistEveryNOps,
		},
		RetryPolicy: errclass.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
		},
	})

	console(ctx, eng, log)
}

func console(ctx context.Context, eng *engine.Engine, log logging.Logger) {
	log.Info().Msg("stressharness console ready")
	fmt.Println("stressharness ready. Commands: start, stop, pause, resume, health, list-threads,")
	fmt.Println("create-deposit-thread <id> <pool> <side> <amount> [share], create-withdrawal-thread <id> <pool> <side>,")
	fmt.Println("create-swap-thread <id> <pool> <direction> [amount], start-thread <id>, stop-thread <id>,")
	fmt.Println("empty-thread <id>, delete-thread <id>, get-thread-status <id>,")
	fmt.Println("create-pool [ratio decA decB direction:A|B], create-pool-random, list-pools, get-pool <id>,")
	fmt.Println("airdrop-sol <sol>, mint-and-send-tokens <pool> <side:A|B> <recipient> <amount>,")
	fmt.Println("core-wallet-status, stop-service")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		if err := dispatch(ctx, eng, cmd, args); err != nil {
			log.Warn().Err(err).Str("command", cmd).Msg("command failed")
			fmt.Printf("error: %v\n", err)
		}
		if cmd == "stop-service" {
			return
		}
	}
}

func dispatch(ctx context.Context, eng *engine.Engine, cmd string, args []string) error {
	switch cmd {
	case "start":
		return eng.Start(ctx)
	case "stop", "stop-service":
		return eng.Stop(ctx)
	case "pause":
		return eng.Pause()
	case "resume":
		return eng.Resume()
	case "health":
		h := eng.Health()
		fmt.Printf("state=%s total=%d running=%d failed=%d pid=%d mem_mb=%d\n",
			h.State, h.TotalWorkers, h.Running, h.Failed, h.ProcessID, h.MemMB)
		return nil
	case "list-threads":
		for id, w := range eng.ListWorkers() {
			fmt.Printf("%s kind=%s pool=%s status=%s\n", id, w.Kind, w.PoolID, w.Status)
		}
		return nil
	case "get-thread-status":
		if len(args) < 1 {
			return fmt.Errorf("usage: get-thread-status <id>")
		}
		status, ok := eng.GetWorkerStatus(args[0])
		if !ok {
			return fmt.Errorf("unknown worker: %s", args[0])
		}
		fmt.Println(status)
		return nil
	case "create-pool":
		return createPool(ctx, eng, args)
	case "create-pool-random":
		pool, err := eng.CreatePoolRandom(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("created pool %s ratio=%s\n", pool.PoolID, pool.RatioDisplay)
		return nil
	case "list-pools":
		for _, p := range eng.ListPools() {
			fmt.Printf("%s ratio=%s tokenA=%s tokenB=%s\n", p.PoolID, p.RatioDisplay, p.TokenAMint, p.TokenBMint)
		}
		return nil
	case "get-pool":
		if len(args) < 1 {
			return fmt.Errorf("usage: get-pool <id>")
		}
		p, err := eng.GetPool(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s ratio=%s tokenA=%s (%dd) tokenB=%s (%dd) ratioA=%d ratioB=%d\n",
			p.PoolID, p.RatioDisplay, p.TokenAMint, p.TokenADecimals, p.TokenBMint, p.TokenBDecimals,
			p.RatioANumerator, p.RatioBDenominator)
		return nil
	case "airdrop-sol":
		if len(args) < 1 {
			return fmt.Errorf("usage: airdrop-sol <sol>")
		}
		sol, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid sol amount: %w", err)
		}
		return eng.AirdropSOL(ctx, sol*solana.LAMPORTS_PER_SOL)
	case "mint-and-send-tokens":
		if len(args) < 4 {
			return fmt.Errorf("usage: mint-and-send-tokens <pool> <side:A|B> <recipient> <amount>")
		}
		recipient, err := solana.PublicKeyFromBase58(args[2])
		if err != nil {
			return fmt.Errorf("invalid recipient: %w", err)
		}
		amount, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		return eng.MintAndSendTokens(ctx, args[0], model.TokenSide(args[1]), recipient, amount)
	case "core-wallet-status":
		status, err := eng.CoreWalletStatus(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("core wallet %s balance=%d lamports\n", status.PublicKey, status.Lamports)
		return nil
	case "create-deposit-thread":
		return createDepositThread(eng, args)
	case "create-withdrawal-thread":
		return createWithdrawalThread(eng, args)
	case "create-swap-thread":
		return createSwapThread(eng, args)
	case "start-thread":
		if len(args) < 1 {
			return fmt.Errorf("usage: start-thread <id>")
		}
		return eng.StartWorker(ctx, args[0])
	case "stop-thread":
		if len(args) < 1 {
			return fmt.Errorf("usage: stop-thread <id>")
		}
		return eng.StopWorker(args[0])
	case "empty-thread":
		if len(args) < 1 {
			return fmt.Errorf("usage: empty-thread <id>")
		}
		return eng.EmptyWorker(ctx, args[0])
	case "delete-thread":
		if len(args) < 1 {
			return fmt.Errorf("usage: delete-thread <id>")
		}
		return eng.DeleteWorker(ctx, args[0])
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func createPool(ctx context.Context, eng *engine.Engine, args []string) error {
	params := engine.DefaultPoolParams()
	if len(args) >= 1 {
		ratio, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ratio: %w", err)
		}
		params.RatioWholeNumber = ratio
	}
	if len(args) >= 3 {
		decA, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid token A decimals: %w", err)
		}
		decB, err := strconv.ParseUint(args[2], 10, 8)
		if err != nil {
			return fmt.Errorf("invalid token B decimals: %w", err)
		}
		params.TokenADecimals = uint8(decA)
		params.TokenBDecimals = uint8(decB)
	}
	if len(args) >= 4 {
		switch strings.ToUpper(args[3]) {
		case "A":
			params.Direction = ratiomath.AnchorA
		case "B":
			params.Direction = ratiomath.AnchorB
		default:
			return fmt.Errorf("direction must be A or B")
		}
	}
	pool, err := eng.CreatePool(ctx, params)
	if err != nil {
		return err
	}
	fmt.Printf("created pool %s ratio=%s\n", pool.PoolID, pool.RatioDisplay)
	return nil
}

func createDepositThread(eng *engine.Engine, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: create-deposit-thread <id> <pool> <side:A|B> <amount> [share]")
	}
	amount, err := strconv.ParseUint(args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	share := len(args) >= 5 && strings.EqualFold(args[4], "share")
	_, err = eng.CreateWorker(engine.CreateWorkerRequest{
		WorkerID:      args[0],
		PoolID:        args[1],
		Kind:          model.KindDeposit,
		TokenSide:     model.TokenSide(args[2]),
		InitialAmount: amount,
		AutoRefill:    amount > 0,
		ShareTokens:   share,
	})
	return err
}

func createWithdrawalThread(eng *engine.Engine, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: create-withdrawal-thread <id> <pool> <side:A|B>")
	}
	_, err := eng.CreateWorker(engine.CreateWorkerRequest{
		WorkerID:  args[0],
		PoolID:    args[1],
		Kind:      model.KindWithdraw,
		TokenSide: model.TokenSide(args[2]),
	})
	return err
}

func createSwapThread(eng *engine.Engine, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: create-swap-thread <id> <pool> <direction:AB|BA> [amount]")
	}
	kind := model.KindSwapAB
	if strings.EqualFold(args[2], "BA") {
		kind = model.KindSwapBA
	}
	var amount uint64
	if len(args) >= 4 {
		var err error
		amount, err = strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
	}
	_, err := eng.CreateWorker(engine.CreateWorkerRequest{
		WorkerID:      args[0],
		PoolID:        args[1],
		Kind:          kind,
		InitialAmount: amount,
	})
	return err
}
