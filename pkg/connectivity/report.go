package connectivity

import (
	"encoding/json"
	"fmt"
)

// ClusterReport summarizes one cluster.
type ClusterReport struct {
	ID        int            `json:"id"`
	OriginNet int            `json:"origin_net"`
	NetName   string         `json:"net_name,omitempty"`
	State     string         `json:"state"`
	Items     int            `json:"items"`
	Kinds     map[string]int `json:"kinds"`
}

// Report is a serializable view of a clustering pass.
type Report struct {
	Version     string           `json:"version"`
	Mode        string           `json:"mode"`
	Clusters    []*ClusterReport `json:"clusters"`
	Conflicting int              `json:"conflicting"`
	Orphaned    int              `json:"orphaned"`
	GeneratedBy string           `json:"generated_by"`
}

// NewReport summarizes clusters. netName, if not nil, names origin nets.
func NewReport(mode ClusterMode, clusters []*Cluster, netName func(int) string) *Report {
	r := &Report{
		Version:     "1.0",
		Mode:        mode.String(),
		Clusters:    make([]*ClusterReport, 0, len(clusters)),
		GeneratedBy: "opentrace connectivity engine",
	}
	for i, c := range clusters {
		cr := &ClusterReport{
			ID:        i,
			OriginNet: c.OriginNet(),
			State:     c.State().String(),
			Items:     c.Size(),
			Kinds:     make(map[string]int),
		}
		if netName != nil && c.HasValidNet() {
			cr.NetName = netName(c.OriginNet())
		}
		for _, it := range c.Items() {
			cr.Kinds[it.Kind().String()]++
		}
		if c.IsConflicting() {
			r.Conflicting++
		}
		if c.IsOrphaned() {
			r.Orphaned++
		}
		r.Clusters = append(r.Clusters, cr)
	}
	return r
}

// ExportJSON renders the report as indented JSON.
func (r *Report) ExportJSON() ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("connectivity: nil report")
	}
	return json.MarshalIndent(r, "", "  ")
}
