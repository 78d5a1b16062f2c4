// Package network models the weighted station graph the fleet operates on
// and answers shortest-path and distance queries for the scheduler.
//
// The shortest-path search follows the lazy-decrease-key Dijkstra pattern
// (push a fresh heap entry on every relaxation, discard stale pops instead
// of mutating the heap in place), hand-written over container/heap.
package network

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"sort"
)

// There is no package-level charging station; callers name it explicitly
// through NewNetwork's chargingStation argument.

// Sentinel errors returned by construction-time validation. Query-time
// unreachability is not an error — see Distance and ShortestPath.
var (
	ErrUnknownStation    = errors.New("network: unknown station id")
	ErrNonPositiveWeight = errors.New("network: edge weight must be strictly positive and finite")
)

// Station is an immutable node in the transport network.
type Station struct {
	ID         int
	IsCharging bool
}

// Network is an undirected weighted graph over stations. The zero value is
// not usable; construct with NewNetwork.
type Network struct {
	stations       map[int]Station
	adjacency      map[int]map[int]float64 // adjacency[a][b] = weight, symmetric
	chargingStation int

	// cache of full shortest paths from every station, invalidated on any
	// edge mutation. Precomputing on first query amortizes repeated
	// scheduler lookups across a run.
	pathCache map[int]shortestPaths
}

type shortestPaths struct {
	dist map[int]float64
	prev map[int]int
}

// NewNetwork builds a Network over the given station ids. chargingStation
// must be one of stationIDs; it is recorded as the designated charging
// station (spec default: station 9).
func NewNetwork(stationIDs []int, chargingStation int) (*Network, error) {
	n := &Network{
		stations:  make(map[int]Station, len(stationIDs)),
		adjacency: make(map[int]map[int]float64, len(stationIDs)),
	}
	found := false
	for _, id := range stationIDs {
		n.stations[id] = Station{ID: id}
		n.adjacency[id] = make(map[int]float64)
		if id == chargingStation {
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: charging station %d not in station list", ErrUnknownStation, chargingStation)
	}
	n.chargingStation = chargingStation
	st := n.stations[chargingStation]
	st.IsCharging = true
	n.stations[chargingStation] = st
	return n, nil
}

// ChargingStation returns the designated charging station id.
func (n *Network) ChargingStation() int {
	return n.chargingStation
}

// AllStations returns every station id in ascending order.
func (n *Network) AllStations() []int {
	ids := make([]int, 0, len(n.stations))
	for id := range n.stations {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// HasStation reports whether id names a station in this network.
func (n *Network) HasStation(id int) bool {
	_, ok := n.stations[id]
	return ok
}

// AddEdge adds (or overwrites) an undirected edge between a and b with
// weight w. Both stations must already exist; an unknown station id here
// is a programming error and panics, matching the spec's classification of
// AddEdge-with-unknown-station as a programming error rather than a
// recoverable input error.
func (n *Network) AddEdge(a, b int, w float64) {
	if !n.HasStation(a) || !n.HasStation(b) {
		panic(fmt.Errorf("%w: AddEdge(%d, %d)", ErrUnknownStation, a, b))
	}
	if w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
		panic(fmt.Errorf("%w: AddEdge(%d, %d, %f)", ErrNonPositiveWeight, a, b, w))
	}
	n.adjacency[a][b] = w
	n.adjacency[b][a] = w
	n.pathCache = nil
}

// SetEdges rebuilds the entire edge set from a map of station id to its
// neighbor weights. Any previously cached shortest paths are invalidated.
func (n *Network) SetEdges(edges map[int]map[int]float64) {
	for id := range n.adjacency {
		n.adjacency[id] = make(map[int]float64)
	}
	n.pathCache = nil
	for a, neighbors := range edges {
		for b, w := range neighbors {
			n.AddEdge(a, b, w)
		}
	}
}

// Distance returns the weight of the shortest path between a and b, or
// +Inf if no path exists (including when a != b and a or b is unknown).
// Distance(a, a) is 0 for any a.
func (n *Network) Distance(a, b int) float64 {
	if a == b {
		return 0
	}
	sp := n.pathsFrom(a)
	d, ok := sp.dist[b]
	if !ok {
		return math.Inf(1)
	}
	return d
}

// ShortestPath returns the sequence of station ids from a to b inclusive,
// or an empty slice if unreachable. The returned slice has length >= 2
// whenever a != b and a path exists.
func (n *Network) ShortestPath(a, b int) []int {
	if !n.HasStation(a) || !n.HasStation(b) {
		return nil
	}
	if a == b {
		return []int{a}
	}
	sp := n.pathsFrom(a)
	if _, ok := sp.dist[b]; !ok {
		return nil
	}
	path := []int{b}
	cur := b
	for cur != a {
		prev, ok := sp.prev[cur]
		if !ok {
			return nil
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse in place
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// NextHop returns the next station on the shortest path from a toward b,
// i.e. the single-edge hop a scheduler rule takes this tick. Returns a, false
// if a == b or no path exists.
func (n *Network) NextHop(a, b int) (int, bool) {
	path := n.ShortestPath(a, b)
	if len(path) < 2 {
		return a, false
	}
	return path[1], true
}

// RoutePair is the (source, destination) station pair IsReachableFleet
// checks reachability for.
type RoutePair struct {
	Source      int
	Destination int
}

// IsReachableFleet checks, for every payload's (source, destination) pair,
// that it is reachable from at least one AGV starting station. It returns
// the subset of routes unreachable from every AGV start station, for a
// preflight check before a run starts rather than discovering it mid-
// schedule. An agvStations entry naming a station outside this network is
// ignored rather than treated as a candidate start.
func (n *Network) IsReachableFleet(agvStations []int, routes []RoutePair) []RoutePair {
	validStations := make(map[int]bool, len(n.AllStations()))
	for _, id := range n.AllStations() {
		validStations[id] = true
	}

	var unreachable []RoutePair
	for _, p := range routes {
		reachableFromFleet := false
		for _, start := range agvStations {
			if !validStations[start] {
				continue
			}
			if !math.IsInf(n.Distance(start, p.Source), 1) && !math.IsInf(n.Distance(p.Source, p.Destination), 1) {
				reachableFromFleet = true
				break
			}
		}
		if !reachableFromFleet {
			unreachable = append(unreachable, p)
		}
	}
	return unreachable
}

// pathsFrom computes (and caches) single-source shortest paths from src to
// every reachable station, using a lazy-decrease-key Dijkstra: relaxations
// push fresh heap entries rather than mutating existing ones, and stale
// entries are discarded on pop via the visited set.
func (n *Network) pathsFrom(src int) shortestPaths {
	if n.pathCache == nil {
		n.pathCache = make(map[int]shortestPaths)
	}
	if cached, ok := n.pathCache[src]; ok {
		return cached
	}

	dist := make(map[int]float64, len(n.stations))
	prev := make(map[int]int, len(n.stations))
	visited := make(map[int]bool, len(n.stations))
	dist[src] = 0

	pq := make(stationHeap, 0, len(n.stations))
	heap.Push(&pq, stationDist{id: src, dist: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(stationDist)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		// Deterministic tie-breaking: iterate neighbors in ascending
		// station id order so equal-weight relaxations are applied in a
		// reproducible order, keeping emitted paths stable across runs.
		neighbors := make([]int, 0, len(n.adjacency[cur.id]))
		for nb := range n.adjacency[cur.id] {
			neighbors = append(neighbors, nb)
		}
		sort.Ints(neighbors)

		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			w := n.adjacency[cur.id][nb]
			nd := dist[cur.id] + w
			existing, seen := dist[nb]
			if !seen || nd < existing {
				dist[nb] = nd
				prev[nb] = cur.id
				heap.Push(&pq, stationDist{id: nb, dist: nd})
			}
		}
	}

	sp := shortestPaths{dist: dist, prev: prev}
	n.pathCache[src] = sp
	return sp
}

type stationDist struct {
	id   int
	dist float64
}

// stationHeap is a min-heap of stationDist ordered by dist ascending, with
// station id as a deterministic tiebreaker for equal distances.
type stationHeap []stationDist

func (h stationHeap) Len() int { return len(h) }
func (h stationHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].id < h[j].id
}
func (h stationHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *stationHeap) Push(x interface{}) {
	*h = append(*h, x.(stationDist))
}
func (h *stationHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
