package cmd

import (
	"bufio"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/justapithecus/objext/runtime"
	"github.com/justapithecus/objext/store"
	"github.com/justapithecus/objext/types"
)

// Synthetic sample defaults.
const (
	defaultGenerateEvents = 100
	generatedRun          = 1
	eventsPerLumi         = 50
	maxGeneratedObjects   = 4
	electronMass          = 0.000511
	muonMass              = 0.10566
)

// Collection tags written by generate.
const (
	GeneratedElectrons = "electrons"
	GeneratedMuons     = "muons"
)

// GenerateCommand returns the generate command.
// Generate writes a synthetic event store for demos and tests.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write a synthetic event store with electron and muon collections",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output store file", Required: true},
			&cli.Int64Flag{Name: "events", Aliases: []string{"n"}, Usage: "Number of events", Value: defaultGenerateEvents},
			&cli.Uint64Flag{Name: "seed", Usage: "Random seed", Value: 1},
		},
		Action: generateAction,
	}
}

func generateAction(c *cli.Context) error {
	n := c.Int64("events")
	if n < 0 {
		return cli.Exit("--events must be >= 0", runtime.ExitCodeConfigError)
	}

	path := c.String("output")
	if err := generateStore(path, n, c.Uint64("seed")); err != nil {
		return cli.Exit(fmt.Sprintf("generate failed: %v", err), runtime.ExitCodeSinkFailure)
	}

	_, err := fmt.Fprintf(c.App.Writer, "wrote %d events to %s\n", n, path)
	return err
}

// generateStore writes n events to path. The same seed yields the same events.
func generateStore(path string, n int64, seed uint64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	w := store.NewWriter(bw)
	if err := w.WriteHeader("objext-generate/" + types.Version); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range n {
		ev := syntheticEvent(rng, uint64(i))
		if err := w.WriteEvent(ev); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func syntheticEvent(rng *rand.Rand, i uint64) *types.Event {
	electrons := make([]types.PhysicsObject, rng.IntN(maxGeneratedObjects+1))
	for j := range electrons {
		electrons[j] = syntheticObject(rng, electronMass)
	}

	muons := make([]types.PhysicsObject, rng.IntN(maxGeneratedObjects+1))
	for j := range muons {
		mu := syntheticObject(rng, muonMass)
		if rng.Float64() < 0.7 {
			mu.IsGlobal = true
			mu.GlobalTrack = &types.Track{
				Pt:  mu.Pt() * (1 + 0.02*rng.NormFloat64()),
				Eta: mu.Eta() + 0.001*rng.NormFloat64(),
				Phi: mu.Phi(),
			}
		}
		muons[j] = mu
	}

	return &types.Event{
		Run:   generatedRun,
		Lumi:  1 + i/eventsPerLumi,
		Event: i + 1,
		Collections: map[string]types.Collection{
			GeneratedElectrons: {Kind: types.KindElectron, Objects: electrons},
			GeneratedMuons:     {Kind: types.KindMuon, Objects: muons},
		},
	}
}

// syntheticObject draws pt from a falling spectrum above 5 GeV with |eta| < 2.5.
func syntheticObject(rng *rand.Rand, mass float64) types.PhysicsObject {
	pt := 5 + rng.ExpFloat64()*20
	eta := (rng.Float64()*2 - 1) * 2.5
	phi := (rng.Float64()*2 - 1) * math.Pi

	px := pt * math.Cos(phi)
	py := pt * math.Sin(phi)
	pz := pt * math.Sinh(eta)
	charge := 1
	if rng.IntN(2) == 0 {
		charge = -1
	}

	return types.PhysicsObject{
		Energy: math.Sqrt(px*px + py*py + pz*pz + mass*mass),
		Px:     px,
		Py:     py,
		Pz:     pz,
		Charge: charge,
	}
}
