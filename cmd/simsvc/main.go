package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"ropewar/internal/combat"
	"ropewar/internal/config"
	"ropewar/internal/deck"
	"ropewar/internal/server"
	"ropewar/internal/sim"
)

func main() {
	var cfgDir, out, script, addr, deckDir string
	var stageNo, n, workers, rounds int
	var seed int64
	var saveLog bool
	flag.StringVar(&cfgDir, "config", "", "config dir (empty: built-in data)")
	flag.StringVar(&out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.IntVar(&stageNo, "stage", 0, "stage number (0: default stage)")
	flag.Int64Var(&seed, "seed", 12345, "seed")
	flag.IntVar(&n, "n", 1, "number of simulations")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "batch workers")
	flag.BoolVar(&saveLog, "log", true, "save full event log when n==1")
	flag.StringVar(&script, "script", "", "JSON sim input with placement ops")
	flag.StringVar(&addr, "http", "", "serve the HTTP API on this address instead of running")
	flag.StringVar(&deckDir, "deck", "", "directory of the saved deck (card levels)")
	flag.IntVar(&rounds, "campaign", 0, "play this many campaign rounds from the saved stage")
	flag.Parse()

	if err := run(cfgDir, out, script, addr, deckDir, stageNo, n, workers, rounds, seed, saveLog); err != nil {
		fmt.Fprintln(os.Stderr, "simsvc:", err)
		os.Exit(1)
	}
}

func run(cfgDir, out, script, addr, deckDir string, stageNo, n, workers, rounds int, seed int64, saveLog bool) error {
	bundle, err := loadBundle(cfgDir)
	if err != nil {
		return err
	}
	runner, err := sim.NewRunner(bundle)
	if err != nil {
		return err
	}
	var store deck.Store = deck.NewMemoryStore()
	if deckDir != "" {
		store = deck.FileStore{Dir: deckDir}
		if _, err := deck.Restore(store, "deck", runner.Deck); err != nil {
			return err
		}
	}

	if addr != "" {
		camp, err := sim.NewCampaign(runner, store, "deck")
		if err != nil {
			return err
		}
		fmt.Printf("simsvc listening on %s\n", addr)
		return server.New(runner, camp).Run(addr)
	}

	in := sim.Input{Stage: stageNo, Seed: seed}
	if script != "" {
		b, err := os.ReadFile(script)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(b, &in); err != nil {
			return fmt.Errorf("%s: %w", script, err)
		}
		if stageNo > 0 {
			in.Stage = stageNo
		}
	}

	if rounds > 0 {
		camp, err := sim.NewCampaign(runner, store, "deck")
		if err != nil {
			return err
		}
		played, err := campaign(camp, in, rounds)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, combat.MarshalPretty(played), 0644); err != nil {
			return err
		}
		fmt.Printf("Campaign %d rounds done, now at stage %d -> %s\n", rounds, camp.Stage(), filepath.Base(out))
		return nil
	}

	if n <= 1 {
		res, err := runner.Run(in, saveLog)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, combat.MarshalPretty(res), 0644); err != nil {
			return err
		}
		fmt.Printf("Single sim finished. Win=%v, T=%.2fs, ropes %d:%d -> %s\n",
			res.Win, res.Duration, res.AlliedRopes, res.EnemyRopes, out)
		return nil
	}

	summary, err := batch(runner, in, n, workers)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, combat.MarshalPretty(summary), 0644); err != nil {
		return err
	}
	fmt.Printf("Batch %d done -> %s\n", n, filepath.Base(out))
	return nil
}

func loadBundle(dir string) (*config.Bundle, error) {
	if dir == "" {
		return config.Default()
	}
	return config.LoadAll(dir)
}

// batch replays the same script over n consecutive seeds.
func batch(runner *sim.Runner, in sim.Input, n, workers int) (map[string]any, error) {
	type stat struct {
		Win      int
		SumT     float64
		Allied   int
		Enemy    int
		Deaths   map[string]int
		Skills   map[string]int
		FirstErr error
	}
	st := stat{Deaths: map[string]int{}, Skills: map[string]int{}}
	var mu sync.Mutex
	wg := sync.WaitGroup{}
	workers = max(1, workers)
	jobs := make(chan int, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				job := in
				job.Seed = in.Seed + int64(i)
				res, err := runner.Run(job, false)

				mu.Lock()
				if err != nil {
					if st.FirstErr == nil {
						st.FirstErr = fmt.Errorf("seed %d: %w", job.Seed, err)
					}
					mu.Unlock()
					continue
				}
				if res.Win {
					st.Win++
				}
				st.SumT += res.Duration
				st.Allied += res.AlliedRopes
				st.Enemy += res.EnemyRopes
				for k, v := range res.Deaths {
					st.Deaths[k] += v
				}
				for k, v := range res.Skills {
					st.Skills[k] += v
				}
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if st.FirstErr != nil {
		return nil, st.FirstErr
	}

	return map[string]any{
		"runs":             n,
		"win_rate":         float64(st.Win) / float64(n),
		"avg_time":         st.SumT / float64(n),
		"avg_allied_ropes": float64(st.Allied) / float64(n),
		"avg_enemy_ropes":  float64(st.Enemy) / float64(n),
		"deaths":           st.Deaths,
		"skills":           st.Skills,
	}, nil
}

// campaign plays rounds on consecutive seeds and always takes the first
// offered benefit.
func campaign(camp *sim.Campaign, in sim.Input, rounds int) ([]sim.Round, error) {
	first := func([]sim.Benefit) int { return 0 }
	var out []sim.Round
	for i := 0; i < rounds; i++ {
		job := in
		job.Seed = in.Seed + int64(i)
		round, err := camp.Play(job, false, first)
		if err != nil {
			return out, fmt.Errorf("round %d: %w", i+1, err)
		}
		out = append(out, round)
	}
	return out, nil
}
