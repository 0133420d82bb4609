// Command maci-cli drives a MaciState engine from the shell for manual
// testing and fixture generation: sign-ups, message publication, batch
// processing, and tallying, with state persisted as a JSON snapshot
// between invocations. It is a convenience wrapper, not a coordinator
// daemon — it holds no network listener and makes no on-chain calls.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/MuriData/maci-core/pkg/babyjub"
	"github.com/MuriData/maci-core/pkg/field"
	"github.com/MuriData/maci-core/pkg/maci"
	"github.com/MuriData/maci-core/pkg/maciconfig"
	"github.com/rs/zerolog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	var err error
	switch os.Args[1] {
	case "signup":
		err = runSignUp(log, os.Args[2:])
	case "publish":
		err = runPublish(log, os.Args[2:])
	case "process-batch":
		err = runProcessBatch(log, os.Args[2:])
	case "tally":
		err = runTally(log, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("maci-cli")
	}
}

func printUsage() {
	fmt.Println(`Usage:
  maci-cli signup        -state FILE -pubkey-x X -pubkey-y Y
  maci-cli publish       -state FILE -message FILE
  maci-cli process-batch -state FILE -start N -size N
  maci-cli tally         -state FILE -start N -size N -current-salt N -new-salt N`)
}

// snapshot is the CLI's own on-disk shape for a MaciState, independent of
// the in-memory engine's representation. It exists purely so repeated
// CLI invocations can resume a session; the core itself never persists.
type snapshot struct {
	StateTreeDepth            int    `json:"stateTreeDepth"`
	MessageTreeDepth          int    `json:"messageTreeDepth"`
	VoteOptionTreeDepth       int    `json:"voteOptionTreeDepth"`
	MessageBatchSize          int    `json:"messageBatchSize"`
	QuadVoteTallyBatchSize    int    `json:"quadVoteTallyBatchSize"`
	MaxVoteOptionIndex        int    `json:"maxVoteOptionIndex"`
	InitialVoiceCreditBalance string `json:"initialVoiceCreditBalance"`

	CoordinatorPrivKey string `json:"coordinatorPrivKey"`

	Users []struct {
		PubKeyX            string   `json:"pubKeyX"`
		PubKeyY            string   `json:"pubKeyY"`
		Votes              []string `json:"votes"`
		VoiceCreditBalance string   `json:"voiceCreditBalance"`
		Nonce              string   `json:"nonce"`
	} `json:"users"`

	Messages []struct {
		IV        string   `json:"iv"`
		Data      []string `json:"data"`
		EncPubKeyX string  `json:"encPubKeyX"`
		EncPubKeyY string  `json:"encPubKeyY"`
	} `json:"messages"`
}

func decStr(e field.Element) string { return e.String() }

func parseDec(s string) field.Element {
	n := new(big.Int)
	n.SetString(s, 10)
	return field.FromBigInt(n)
}

func loadState(path string) (*maci.MaciState, *snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()

	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		return nil, nil, fmt.Errorf("decode state file: %w", err)
	}

	cfg, err := maciconfig.NewConfig(
		snap.StateTreeDepth, snap.MessageTreeDepth, snap.VoteOptionTreeDepth,
		snap.MessageBatchSize, snap.QuadVoteTallyBatchSize,
		snap.MaxVoteOptionIndex, parseDec(snap.InitialVoiceCreditBalance),
	)
	if err != nil {
		return nil, nil, err
	}

	priv := babyjub.PrivKeyFromElement(parseDec(snap.CoordinatorPrivKey))
	coordinator := &babyjub.Keypair{Priv: priv, Pub: priv.Public()}

	s := maci.NewMaciState(cfg, coordinator, zerolog.Nop())

	for _, u := range snap.Users {
		pub := babyjub.PubKey{X: parseDec(u.PubKeyX), Y: parseDec(u.PubKeyY)}
		if _, err := s.SignUp(pub); err != nil {
			return nil, nil, fmt.Errorf("replay signUp: %w", err)
		}
	}

	for _, m := range snap.Messages {
		var data [10]field.Element
		for i, d := range m.Data {
			data[i] = parseDec(d)
		}
		msg := maci.Message{IV: parseDec(m.IV), Data: data}
		encPub := babyjub.PubKey{X: parseDec(m.EncPubKeyX), Y: parseDec(m.EncPubKeyY)}
		if err := s.PublishMessage(msg, encPub); err != nil {
			return nil, nil, fmt.Errorf("replay publishMessage: %w", err)
		}
	}

	return s, &snap, nil
}

func saveState(path string, snap *snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func runSignUp(log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	statePath := fs.String("state", "", "state snapshot file")
	pubX := fs.String("pubkey-x", "", "new user's public key x")
	pubY := fs.String("pubkey-y", "", "new user's public key y")
	fs.Parse(args)

	_, snap, err := loadState(*statePath)
	if err != nil {
		return err
	}

	snap.Users = append(snap.Users, struct {
		PubKeyX            string   `json:"pubKeyX"`
		PubKeyY            string   `json:"pubKeyY"`
		Votes              []string `json:"votes"`
		VoiceCreditBalance string   `json:"voiceCreditBalance"`
		Nonce              string   `json:"nonce"`
	}{
		PubKeyX:            *pubX,
		PubKeyY:            *pubY,
		VoiceCreditBalance: snap.InitialVoiceCreditBalance,
		Nonce:              "0",
	})

	if err := saveState(*statePath, snap); err != nil {
		return err
	}
	log.Info().Int("stateIndex", len(snap.Users)).Msg("signed up")
	return nil
}

func runPublish(log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	statePath := fs.String("state", "", "state snapshot file")
	messagePath := fs.String("message", "", "JSON file containing {iv,data[10],encPubKeyX,encPubKeyY}")
	fs.Parse(args)

	_, snap, err := loadState(*statePath)
	if err != nil {
		return err
	}

	mf, err := os.Open(*messagePath)
	if err != nil {
		return fmt.Errorf("open message file: %w", err)
	}
	defer mf.Close()

	var entry struct {
		IV         string   `json:"iv"`
		Data       []string `json:"data"`
		EncPubKeyX string   `json:"encPubKeyX"`
		EncPubKeyY string   `json:"encPubKeyY"`
	}
	if err := json.NewDecoder(mf).Decode(&entry); err != nil {
		return fmt.Errorf("decode message file: %w", err)
	}

	snap.Messages = append(snap.Messages, struct {
		IV         string   `json:"iv"`
		Data       []string `json:"data"`
		EncPubKeyX string   `json:"encPubKeyX"`
		EncPubKeyY string   `json:"encPubKeyY"`
	}(entry))

	if err := saveState(*statePath, snap); err != nil {
		return err
	}
	log.Info().Int("messageIndex", len(snap.Messages)-1).Msg("published message")
	return nil
}

func runProcessBatch(log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("process-batch", flag.ExitOnError)
	statePath := fs.String("state", "", "state snapshot file")
	start := fs.Int("start", 0, "batch start index")
	size := fs.Int("size", 0, "batch size")
	fs.Parse(args)

	s, snap, err := loadState(*statePath)
	if err != nil {
		return err
	}

	randomLeaf, err := maci.RandomStateLeaf()
	if err != nil {
		return err
	}
	if err := s.BatchProcessMessage(*start, *size, randomLeaf); err != nil {
		return err
	}

	for i := range snap.Users {
		u, err := s.User(i + 1)
		if err != nil {
			return err
		}
		snap.Users[i].PubKeyX = decStr(u.PubKey.X)
		snap.Users[i].PubKeyY = decStr(u.PubKey.Y)
		snap.Users[i].VoiceCreditBalance = decStr(u.VoiceCreditBalance)
		snap.Users[i].Nonce = decStr(u.Nonce)
		votes := make([]string, len(u.Votes))
		for j, v := range u.Votes {
			votes[j] = decStr(v)
		}
		snap.Users[i].Votes = votes
	}

	if err := saveState(*statePath, snap); err != nil {
		return err
	}
	log.Info().Str("stateRoot", s.GenStateRoot().String()).Msg("batch processed")
	return nil
}

func runTally(log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("tally", flag.ExitOnError)
	statePath := fs.String("state", "", "state snapshot file")
	start := fs.Int("start", 0, "batch start index")
	size := fs.Int("size", 0, "batch size")
	currentSalt := fs.String("current-salt", "0", "salt committing the current results")
	newSalt := fs.String("new-salt", "0", "salt committing the new results")
	fs.Parse(args)

	s, _, err := loadState(*statePath)
	if err != nil {
		return err
	}

	inputs, err := s.GenQuadVoteTallyCircuitInputs(*start, *size, parseDec(*currentSalt), parseDec(*newSalt))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(inputs); err != nil {
		return err
	}
	log.Info().Int("batchIndex", inputs.BatchIndex).Msg("tally computed")
	return nil
}
