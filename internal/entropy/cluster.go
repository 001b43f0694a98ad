package entropy

import (
	"github.com/jxldecoder/jxl/internal/bitio"
	"github.com/jxldecoder/jxl/internal/jxlerr"
)

// ClusterMap assigns each of numCtx contexts to one of numClusters entropy
// clusters, optionally through a move-to-front permutation (§4.3).
type ClusterMap struct {
	Cluster     []uint8
	NumClusters int
}

// ReadClusterMap reads a cluster map for numCtx contexts. When numCtx == 1
// the map is trivially {0}. Otherwise it reads a use_mtf flag, then the
// per-context cluster indices through a nested single-context CodeSpec
// (see below), then undoes MTF if requested.
func ReadClusterMap(r *bitio.Reader, numCtx int) (*ClusterMap, error) {
	if numCtx == 1 {
		return &ClusterMap{Cluster: []uint8{0}, NumClusters: 1}, nil
	}

	useMtf, err := r.U(1)
	if err != nil {
		return nil, err
	}

	// The cluster indices themselves are coded with a single-cluster
	// CodeSpec of their own (a nested prefix/ANS code over alphabet size
	// numCtx), exactly as JXL bootstraps context clustering before the
	// real CodeSpec exists.
	spec, err := ReadCodeSpec(r, 1, numCtx)
	if err != nil {
		return nil, err
	}
	state := spec.NewState()

	cluster := make([]uint8, numCtx)
	maxCluster := 0
	for i := 0; i < numCtx; i++ {
		v, err := state.Read(r, spec, 0)
		if err != nil {
			return nil, err
		}
		if int(v) >= numCtx {
			return nil, jxlerr.New(jxlerr.ErrCluster, "cluster index out of range")
		}
		cluster[i] = uint8(v)
		if int(v) > maxCluster {
			maxCluster = int(v)
		}
	}
	if err := state.Finish(); err != nil {
		return nil, err
	}

	if useMtf == 1 {
		var mtf [256]uint8
		for i := range mtf {
			mtf[i] = uint8(i)
		}
		for i, v := range cluster {
			idx := v
			sym := mtf[idx]
			copy(mtf[1:idx+1], mtf[0:idx])
			mtf[0] = sym
			cluster[i] = sym
		}
	}

	numClusters := 0
	for _, c := range cluster {
		if int(c) >= numClusters {
			numClusters = int(c) + 1
		}
	}
	return &ClusterMap{Cluster: cluster, NumClusters: numClusters}, nil
}
