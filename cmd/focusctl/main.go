// focusctl - command line viewer for a running focusbuddy daemon.
// Connects to the live focus feed and prints score updates as they
// arrive. Useful for checking a session without opening the dashboard.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
)

type feedMessage struct {
	Type           string        `json:"type"`
	Tick           *tickPayload  `json:"tick,omitempty"`
	ElapsedSeconds *int          `json:"elapsed_seconds,omitempty"`
	Record         *sessionEnd   `json:"record,omitempty"`
	Quote          *quotePayload `json:"quote,omitempty"`
}

type tickPayload struct {
	Score       int            `json:"score"`
	Noise       string         `json:"noise"`
	People      string         `json:"people"`
	Light       string         `json:"light"`
	NoiseLevel  int            `json:"noise_level"`
	PersonCount int            `json:"person_count"`
	LightLevel  *int           `json:"light_level"`
	StrongAlert bool           `json:"strong_alert"`
	Notes       []notification `json:"notifications"`
}

type notification struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type sessionEnd struct {
	Score           int    `json:"score"`
	DurationSeconds int    `json:"duration_seconds"`
	Timestamp       string `json:"timestamp"`
}

type quotePayload struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

func main() {
	var (
		host   = flag.String("host", "localhost:8080", "focusbuddy daemon address")
		quotes = flag.Bool("quotes", false, "also print rotating quotes")
	)
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws/focus", *host)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("❌ Failed to connect to %s: %v", url, err)
	}
	defer conn.Close()

	fmt.Printf("📡 Connected to %s\n", url)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n👋 Disconnecting")
		conn.Close()
		os.Exit(0)
	}()

	elapsed := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("❌ Connection lost: %v", err)
		}
		var msg feedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "elapsed":
			if msg.ElapsedSeconds != nil {
				elapsed = *msg.ElapsedSeconds
			}
		case "tick":
			if msg.Tick != nil {
				printTick(elapsed, msg.Tick)
			}
		case "session_end":
			if msg.Record != nil {
				fmt.Printf("🏁 Session ended: score %d after %ds\n",
					msg.Record.Score, msg.Record.DurationSeconds)
			}
		case "quote":
			if *quotes && msg.Quote != nil {
				fmt.Printf("💬 %q — %s\n", msg.Quote.Text, msg.Quote.Author)
			}
		}
	}
}

func printTick(elapsed int, t *tickPayload) {
	light := "n/a"
	if t.LightLevel != nil {
		light = fmt.Sprintf("%d lux", *t.LightLevel)
	}
	marker := "  "
	if t.StrongAlert {
		marker = "🚨"
	}
	fmt.Printf("%s[%4ds] score=%3d noise=%d dB (%s) people=%d (%s) light=%s (%s)\n",
		marker, elapsed, t.Score,
		t.NoiseLevel, t.Noise,
		t.PersonCount, t.People,
		light, t.Light)
	for _, n := range t.Notes {
		fmt.Printf("   %s\n", n.Message)
	}
}
