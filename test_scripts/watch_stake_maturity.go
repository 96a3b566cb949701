package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Polls a running ledger API until the given stake matures, then prints the
// final reward snapshot. Useful for watching a stake on a dev environment
// without spamming the endpoint by hand.
func main() {
	apiURL := flag.String("api", "http://127.0.0.1:8090", "ledger API base URL")
	staker := flag.String("staker", "", "staker hex address")
	stakeID := flag.Uint64("stake-id", 1, "stake id")
	interval := flag.Duration("interval", 30*time.Second, "polling interval")
	flag.Parse()

	if *staker == "" {
		log.Fatal("missing required -staker flag")
	}

	url := fmt.Sprintf("%s/v1/stake/%s/%d", *apiURL, *staker, *stakeID)
	log.Printf("Watching stake %d of %s\n", *stakeID, *staker)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		details, err := fetchStake(url)
		if err != nil {
			log.Fatalf("Failed to fetch stake: %v", err)
		}

		if details.Claimed {
			log.Println("Stake is already claimed")
			return
		}
		if details.CanClaim {
			log.Printf("Stake matured! rewards=%s principal=%s\n", details.CurrentRewards, details.AmountStaked)
			return
		}

		remaining := time.Until(time.Unix(details.StakeEndTime, 0))
		log.Printf("Not matured yet: rewards=%s remaining=%s\n", details.CurrentRewards, remaining.Round(time.Second))

		select {
		case <-ticker.C:
		case <-sigChan:
			log.Println("Received interrupt signal, shutting down...")
			return
		}
	}
}

type stakeDetails struct {
	AmountStaked   string `json:"amountStaked"`
	CurrentRewards string `json:"currentRewards"`
	StakeEndTime   int64  `json:"stakeEndTime"`
	Claimed        bool   `json:"claimed"`
	CanClaim       bool   `json:"canClaim"`
}

func fetchStake(url string) (*stakeDetails, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var details stakeDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, err
	}

	return &details, nil
}
