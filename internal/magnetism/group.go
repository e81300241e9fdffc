package magnetism

import (
	"sort"
	"strings"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distance.
const EarthRadiusMeters = 6371000.0

// DefaultGroupingThresholdMeters is the distance within which two anomalies
// are considered part of the same physical feature.
const DefaultGroupingThresholdMeters = 2.0

// maxGroupIDLength caps the concatenated-member-ID portion of a group ID.
const maxGroupIDLength = 32

// GroupingConfig tunes proximity grouping. A zero threshold falls back to
// DefaultGroupingThresholdMeters.
type GroupingConfig struct {
	ThresholdMeters float64 `json:"threshold_meters"`
}

func (c GroupingConfig) withDefaults() GroupingConfig {
	if c.ThresholdMeters <= 0 {
		c.ThresholdMeters = DefaultGroupingThresholdMeters
	}
	return c
}

// CalculateDistanceMeters returns the great-circle (Haversine) distance in
// meters between two coordinates.
func CalculateDistanceMeters(a, b GeoCoordinate) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// disjointSet is a flat-array union-find over anomaly indices with path
// compression. Roots map back to anomalies only when groups are built, so no
// object graph or shared references are needed.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent}
}

func (d *disjointSet) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]] // path halving
		i = d.parent[i]
	}
	return i
}

func (d *disjointSet) union(a, b int) {
	rootA, rootB := d.find(a), d.find(b)
	if rootA != rootB {
		d.parent[rootB] = rootA
	}
}

// GroupAnomaliesByProximity clusters anomalies within ThresholdMeters of
// each other into single logical regions. Clustering is transitive closure:
// A near B and B near C puts all three in one group even when A and C are
// farther apart than the threshold. Pairwise distance checks make this
// O(n²); callers bound batch size before calling.
//
// Groups are emitted in order of each group's first member in the input, and
// members keep their input order within a group.
func GroupAnomaliesByProximity(anomalies []MagneticAnomaly, cfg GroupingConfig) []AnomalyGroup {
	if len(anomalies) == 0 {
		return nil
	}
	cfg = cfg.withDefaults()

	sets := newDisjointSet(len(anomalies))
	for i := 0; i < len(anomalies); i++ {
		for j := i + 1; j < len(anomalies); j++ {
			if CalculateDistanceMeters(anomalies[i].Position, anomalies[j].Position) <= cfg.ThresholdMeters {
				sets.union(i, j)
			}
		}
	}

	members := make(map[int][]MagneticAnomaly)
	var rootOrder []int
	for i, a := range anomalies {
		root := sets.find(i)
		if _, seen := members[root]; !seen {
			rootOrder = append(rootOrder, root)
		}
		members[root] = append(members[root], a)
	}

	groups := make([]AnomalyGroup, 0, len(rootOrder))
	for _, root := range rootOrder {
		groups = append(groups, buildGroup(members[root]))
	}
	return groups
}

// buildGroup aggregates one union-find component: component-wise mean
// centroid, max combined intensity, and a deterministic ID from the sorted
// member IDs. A single-member group's centroid equals that member's position
// exactly.
func buildGroup(members []MagneticAnomaly) AnomalyGroup {
	var lat, lon, alt, acc, maxIntensity float64
	ids := make([]string, len(members))
	for i, m := range members {
		lat += m.Position.Latitude
		lon += m.Position.Longitude
		alt += m.Position.Altitude
		acc += m.Position.Accuracy
		if m.Intensity > maxIntensity {
			maxIntensity = m.Intensity
		}
		ids[i] = m.ID
	}
	n := float64(len(members))

	return AnomalyGroup{
		ID:        groupID(ids),
		Anomalies: members,
		Centroid: GeoCoordinate{
			Latitude:  lat / n,
			Longitude: lon / n,
			Altitude:  alt / n,
			Accuracy:  acc / n,
		},
		CombinedIntensity: maxIntensity,
	}
}

func groupID(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	joined := strings.Join(sorted, "")
	if len(joined) > maxGroupIDLength {
		joined = joined[:maxGroupIDLength]
	}
	return "group-" + joined
}
