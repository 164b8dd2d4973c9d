package restserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmelendez/airdash/internal/controllers/openweather"
	"github.com/cmelendez/airdash/internal/log"
	"github.com/cmelendez/airdash/internal/simulator"
)

// maxStreamCities bounds the worldwide stream fan-out per subscriber.
const maxStreamCities = 5

// subscriberRegistry tracks active SSE subscribers by id.
type subscriberRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newSubscriberRegistry() *subscriberRegistry {
	return &subscriberRegistry{active: make(map[string]struct{})}
}

func (r *subscriberRegistry) add(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[id] = struct{}{}
}

func (r *subscriberRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

// Count returns the number of active subscribers.
func (r *subscriberRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

// subscriber buffers marshaled stream frames for one SSE client. When
// the client cannot keep up the oldest buffered frame is dropped.
type subscriber struct {
	id     string
	events chan []byte
}

func (s *subscriber) publish(frame []byte) {
	for {
		select {
		case s.events <- frame:
			return
		default:
			select {
			case <-s.events:
			default:
			}
		}
	}
}

// StreamRealtime streams simulated readings for all home stations as
// server-sent events, one frame per tick.
func (h *Handlers) StreamRealtime(w http.ResponseWriter, req *http.Request) {
	profiles := make([]simulator.Profile, 0, len(h.ctrl.StationKeys))
	for _, name := range h.ctrl.StationKeys {
		if p, ok := h.ctrl.profileFor(name); ok {
			profiles = append(profiles, p)
		}
	}
	h.serveStream(w, req, profiles, h.ctrl.streamInterval)
}

// StreamWorldwide streams simulated readings for up to five arbitrary
// cities given in the cities query parameter. With no cities given the
// first five popular cities are streamed.
func (h *Handlers) StreamWorldwide(w http.ResponseWriter, req *http.Request) {
	cities := splitCityList(req.URL.Query().Get("cities"))
	if len(cities) == 0 {
		cities = defaultWorldwideCities()
	}
	if len(cities) > maxStreamCities {
		h.formatter.WriteError(w, req, http.StatusBadRequest, errKindBadRequest,
			fmt.Sprintf("at most %d cities may be streamed at once", maxStreamCities))
		return
	}

	profiles := make([]simulator.Profile, 0, len(cities))
	for _, city := range cities {
		// Home stations keep their data-derived profiles even on the
		// worldwide stream.
		if p, ok := h.ctrl.profileFor(city); ok {
			profiles = append(profiles, p)
			continue
		}
		profiles = append(profiles, simulator.DefaultProfile(city))
	}
	h.serveStream(w, req, profiles, h.ctrl.worldwideStreamInterval)
}

// serveStream runs one SSE session: a producer goroutine samples every
// profile each tick and publishes a combined frame, and the handler
// loop writes frames until the client disconnects or the server shuts
// down. Each session gets its own generators, so concurrent
// subscribers see independent sequences.
func (h *Handlers) serveStream(w http.ResponseWriter, req *http.Request, profiles []simulator.Profile, interval time.Duration) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.formatter.WriteError(w, req, http.StatusInternalServerError, errKindBadRequest,
			"streaming is not supported by this connection")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// End the session on client disconnect or server shutdown,
	// whichever comes first.
	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()
	go func() {
		select {
		case <-h.ctrl.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	sub := &subscriber{
		id:     uuid.New().String(),
		events: make(chan []byte, h.ctrl.streamBufferSize),
	}
	h.ctrl.subs.add(sub.id)
	defer h.ctrl.subs.remove(sub.id)
	log.Debugf("stream subscriber %s connected (%d active)", sub.id, h.ctrl.subs.Count())

	generators := make(map[string]*simulator.Generator, len(profiles))
	for _, p := range profiles {
		generators[streamKey(p.City)] = simulator.NewGenerator(p)
	}

	go func() {
		defer close(sub.events)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				frame, err := marshalFrame(generators, now)
				if err != nil {
					log.Errorf("error marshaling stream frame: %v", err)
					continue
				}
				sub.publish(frame)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debugf("stream subscriber %s disconnected", sub.id)
			return
		case frame, open := <-sub.events:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// marshalFrame samples every generator at the given tick and marshals
// the combined payload.
func marshalFrame(generators map[string]*simulator.Generator, now time.Time) ([]byte, error) {
	payload := make(map[string]any, len(generators)+1)
	for key, gen := range generators {
		payload[key] = gen.Sample(now)
	}
	payload["timestamp"] = now.Format(time.RFC3339)
	return json.Marshal(payload)
}

// splitCityList parses a comma-separated city list, dropping blanks.
func splitCityList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// defaultWorldwideCities returns the first five popular city names.
func defaultWorldwideCities() []string {
	cities := make([]string, 0, maxStreamCities)
	for i := 0; i < maxStreamCities && i < len(openweather.PopularCities); i++ {
		cities = append(cities, openweather.PopularCities[i].Name)
	}
	return cities
}
