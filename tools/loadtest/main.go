package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	base := flag.String("url", "http://localhost:8000", "server base URL")
	listeners := flag.Int("listeners", 10, "notification channels to open")
	posters := flag.Int("posters", 5, "concurrent posters")
	room := flag.String("room", "loadtest", "room to use")
	messages := flag.Int("messages", 10, "messages per poster")
	flag.Parse()

	log.Printf("Load test: %d listeners, %d posters x %d messages, room=%s", *listeners, *posters, *messages, *room)

	var (
		connected int64
		sent      int64
		received  int64
		errors    int64
		latencies []time.Duration
		latencyMu sync.Mutex
		listenWG  sync.WaitGroup
		postWG    sync.WaitGroup
	)

	roomURL := strings.TrimRight(*base, "/") + "/" + url.PathEscape(*room)
	notifyURL := "ws" + strings.TrimPrefix(roomURL, "http") + "/notify"
	dialer := websocket.Dialer{Subprotocols: []string{"meowww"}, HandshakeTimeout: 10 * time.Second}
	expected := int64(*posters * *messages)
	stop := make(chan struct{})

	for i := 0; i < *listeners; i++ {
		conn, _, err := dialer.Dial(notifyURL, nil)
		if err != nil {
			atomic.AddInt64(&errors, 1)
			log.Printf("listener %d: dial error: %v", i, err)
			continue
		}
		atomic.AddInt64(&connected, 1)

		listenWG.Add(1)
		go func() {
			defer listenWG.Done()
			defer conn.Close()
			var got int64
			for got < expected {
				conn.SetReadDeadline(time.Now().Add(5 * time.Second))
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				// Empty frames are liveness probes.
				if len(data) == 0 {
					continue
				}
				got++
				atomic.AddInt64(&received, 1)
			}
			<-stop
		}()
	}

	start := time.Now()
	client := &http.Client{
		Timeout: 30 * time.Second,
		// The redirect target re-renders the whole room; skip it.
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	for i := 0; i < *posters; i++ {
		postWG.Add(1)
		go func(id int) {
			defer postWG.Done()
			nick := fmt.Sprintf("user_%d", id)
			for j := 0; j < *messages; j++ {
				sendTime := time.Now()
				resp, err := client.PostForm(roomURL, url.Values{
					"nickname": {nick},
					"content":  {fmt.Sprintf("msg %d from %s", j, nick)},
				})
				if err != nil {
					atomic.AddInt64(&errors, 1)
					continue
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusSeeOther {
					atomic.AddInt64(&errors, 1)
					continue
				}
				atomic.AddInt64(&sent, 1)
				lat := time.Since(sendTime)
				latencyMu.Lock()
				latencies = append(latencies, lat)
				latencyMu.Unlock()
			}
		}(i)
	}

	postWG.Wait()
	elapsed := time.Since(start)
	close(stop)
	listenWG.Wait()

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println("\n=== Load Test Results ===")
	fmt.Printf("Duration:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Listeners:   %d connected\n", connected)
	fmt.Printf("Sent:        %d messages\n", sent)
	fmt.Printf("Delivered:   %d frames (want %d)\n", received, sent*connected)
	fmt.Printf("Errors:      %d\n", errors)
	if len(latencies) > 0 {
		fmt.Printf("Latency p50: %s\n", percentile(latencies, 50))
		fmt.Printf("Latency p95: %s\n", percentile(latencies, 95))
		fmt.Printf("Latency p99: %s\n", percentile(latencies, 99))
	}
	fmt.Printf("Throughput:  %.0f msgs/sec\n", float64(sent)/elapsed.Seconds())
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
