// Package config is the input collaborator: it parses payload CSV and
// network/fleet YAML into validated core entities, so that neither
// internal/payload nor internal/scheduler ever have to parse anything
// themselves. Grounded on tabular's viper-backed FromYaml loader and on
// fleet-service/job-service's struct-tag conventions for field naming.
package config

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/agv"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/network"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/payload"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simerr"
)

// payloadCSVColumns is the fixed column order every payload record must
// follow: id, source, destination, weight, priority, dispatch_time.
const payloadCSVColumns = 6

// ParsePayloadCSV reads payload records from r and validates each into a
// payload.Payload, rejecting the run outright (ErrInputInvalid) on the
// first malformed record, unknown station id, overweight record, or
// duplicate id. stationIDs is the set of valid station ids from the
// network config, used to catch an unknown source/destination early
// rather than let the scheduler discover it as unreachable.
func ParsePayloadCSV(r io.Reader, stationIDs map[int]bool) ([]*payload.Payload, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = payloadCSVColumns
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: payload csv: %v", simerr.ErrInputInvalid, err)
	}

	var payloads []*payload.Payload
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		if i == 0 && isHeaderRow(rec) {
			continue
		}

		id := rec[0]
		if seen[id] {
			return nil, fmt.Errorf("%w: payload csv row %d: duplicate payload id %q", simerr.ErrInputInvalid, i+1, id)
		}

		source, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%w: payload csv row %d: invalid source %q", simerr.ErrInputInvalid, i+1, rec[1])
		}
		destination, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("%w: payload csv row %d: invalid destination %q", simerr.ErrInputInvalid, i+1, rec[2])
		}
		if !stationIDs[source] {
			return nil, fmt.Errorf("%w: payload csv row %d: unknown source station %d", simerr.ErrInputInvalid, i+1, source)
		}
		if !stationIDs[destination] {
			return nil, fmt.Errorf("%w: payload csv row %d: unknown destination station %d", simerr.ErrInputInvalid, i+1, destination)
		}

		weight, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: payload csv row %d: invalid weight %q", simerr.ErrInputInvalid, i+1, rec[3])
		}
		priority, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, fmt.Errorf("%w: payload csv row %d: invalid priority %q", simerr.ErrInputInvalid, i+1, rec[4])
		}
		dispatchTime, err := strconv.Atoi(rec[5])
		if err != nil {
			return nil, fmt.Errorf("%w: payload csv row %d: invalid dispatch_time %q", simerr.ErrInputInvalid, i+1, rec[5])
		}

		p, err := payload.New(id, source, destination, weight, priority, dispatchTime)
		if err != nil {
			return nil, fmt.Errorf("payload csv row %d: %w", i+1, err)
		}
		seen[id] = true
		payloads = append(payloads, p)
	}
	return payloads, nil
}

func isHeaderRow(rec []string) bool {
	_, err := strconv.Atoi(rec[1])
	return err != nil
}

// NetworkConfig is the typed shape of the network/fleet YAML document,
// unmarshalled directly by viper.
type NetworkConfig struct {
	Stations        []int          `mapstructure:"stations"`
	ChargingStation int            `mapstructure:"charging_station"`
	Edges           []EdgeConfig   `mapstructure:"edges"`
	Fleet           []FleetAGV     `mapstructure:"fleet"`
}

// EdgeConfig is one undirected weighted edge.
type EdgeConfig struct {
	From   int     `mapstructure:"from"`
	To     int     `mapstructure:"to"`
	Weight float64 `mapstructure:"weight"`
}

// FleetAGV is one AGV's starting roster entry.
type FleetAGV struct {
	ID           string `mapstructure:"id"`
	StartStation int    `mapstructure:"start_station"`
}

// LoadNetworkConfig reads a network/fleet YAML file via viper, in the
// style of tabular's FromYaml: viper.New, SetConfigFile/SetConfigType,
// AddConfigPath, ReadInConfig, then Unmarshal into a typed struct.
func LoadNetworkConfig(path string) (*NetworkConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: network config: %v", simerr.ErrInputInvalid, err)
	}

	cfg := &NetworkConfig{}
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: network config: %v", simerr.ErrInputInvalid, err)
	}
	return cfg, nil
}

// LoadNetworkConfigBytes reads a network/fleet YAML document already held
// in memory — the shape internal/httpapi receives a config body in —
// via viper's ReadConfig, the byte-stream counterpart to ReadInConfig.
func LoadNetworkConfigBytes(data []byte) (*NetworkConfig, error) {
	vp := viper.New()
	vp.SetConfigType("yaml")
	if err := vp.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: network config: %v", simerr.ErrInputInvalid, err)
	}

	cfg := &NetworkConfig{}
	if err := vp.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: network config: %v", simerr.ErrInputInvalid, err)
	}
	return cfg, nil
}

// BuildNetwork validates a NetworkConfig and constructs the Network and
// fleet it describes — the one place structural YAML problems (an edge
// referencing an unknown station, an empty fleet) turn into
// ErrInputInvalid before the scheduler ever runs.
func BuildNetwork(cfg *NetworkConfig) (*network.Network, []*agv.AGV, error) {
	if len(cfg.Stations) == 0 {
		return nil, nil, fmt.Errorf("%w: network config: no stations declared", simerr.ErrInputInvalid)
	}
	if len(cfg.Fleet) == 0 {
		return nil, nil, fmt.Errorf("%w: network config: no fleet declared", simerr.ErrInputInvalid)
	}

	net, err := network.NewNetwork(cfg.Stations, cfg.ChargingStation)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: network config: %v", simerr.ErrInputInvalid, err)
	}

	stationSet := make(map[int]bool, len(cfg.Stations))
	for _, id := range cfg.Stations {
		stationSet[id] = true
	}

	for _, e := range cfg.Edges {
		if !stationSet[e.From] || !stationSet[e.To] {
			return nil, nil, fmt.Errorf("%w: network config: edge references unknown station (%d, %d)", simerr.ErrInputInvalid, e.From, e.To)
		}
		if e.Weight <= 0 {
			return nil, nil, fmt.Errorf("%w: network config: edge (%d, %d) has non-positive weight %v", simerr.ErrInputInvalid, e.From, e.To, e.Weight)
		}
		net.AddEdge(e.From, e.To, e.Weight)
	}

	ids := make(map[string]bool, len(cfg.Fleet))
	fleet := make([]*agv.AGV, 0, len(cfg.Fleet))
	for _, f := range cfg.Fleet {
		if ids[f.ID] {
			return nil, nil, fmt.Errorf("%w: network config: duplicate agv id %q", simerr.ErrInputInvalid, f.ID)
		}
		if !stationSet[f.StartStation] {
			return nil, nil, fmt.Errorf("%w: network config: agv %q starts at unknown station %d", simerr.ErrInputInvalid, f.ID, f.StartStation)
		}
		ids[f.ID] = true
		fleet = append(fleet, agv.New(f.ID, f.StartStation))
	}

	return net, fleet, nil
}

// StationSet extracts the set of station ids from cfg, for use validating
// payload CSV rows against the same network.
func StationSet(cfg *NetworkConfig) map[int]bool {
	set := make(map[int]bool, len(cfg.Stations))
	for _, id := range cfg.Stations {
		set[id] = true
	}
	return set
}

// ValidateReachability is the preflight check run once network, fleet, and
// payloads are all parsed: it surfaces an ErrNetworkUnreachable warning per
// payload whose source/destination pair no AGV starting station can reach,
// before the scheduler ever starts ticking. Unreachable payloads are
// logged, not fatal — the scheduler simply leaves them undelivered, per
// simerr.ErrNetworkUnreachable's documented propagation policy.
func ValidateReachability(net *network.Network, fleet []*agv.AGV, payloads []*payload.Payload) {
	agvStations := make([]int, 0, len(fleet))
	for _, a := range fleet {
		agvStations = append(agvStations, a.Station)
	}

	routes := make([]network.RoutePair, 0, len(payloads))
	for _, p := range payloads {
		routes = append(routes, network.RoutePair{Source: p.Source, Destination: p.Destination})
	}

	unreachable := make(map[network.RoutePair]bool)
	for _, r := range net.IsReachableFleet(agvStations, routes) {
		unreachable[r] = true
	}
	if len(unreachable) == 0 {
		return
	}

	for _, p := range payloads {
		if unreachable[network.RoutePair{Source: p.Source, Destination: p.Destination}] {
			slog.Warn("config: no AGV start station can reach this payload's route",
				"error", simerr.ErrNetworkUnreachable, "payload_id", p.ID, "source", p.Source, "destination", p.Destination)
		}
	}
}
