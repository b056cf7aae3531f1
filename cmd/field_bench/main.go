// Package main compares the brute-force and quadtree connection search.
//
// Usage:
//
//	go run ./cmd/field_bench [flags]
//
// Flags:
//
//	--counts <list>      Particle counts to measure (default 30,120,500,2000)
//	--distance <px>      Connection distance (default 150)
//	--width, --height    Field size in pixels (default 1920x1080)
//	--iterations <n>     Searches per measurement (default 200)
//	--seed <n>           Random seed (default 1)
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/decker502/netfield/pkg/field"
)

var (
	countsFlag     = flag.String("counts", "30,120,500,2000", "Comma separated particle counts")
	distanceFlag   = flag.Float64("distance", 150, "Connection distance in pixels")
	widthFlag      = flag.Float64("width", 1920, "Field width in pixels")
	heightFlag     = flag.Float64("height", 1080, "Field height in pixels")
	iterationsFlag = flag.Int("iterations", 200, "Searches per measurement")
	seedFlag       = flag.Int64("seed", 1, "Random seed")
)

func main() {
	flag.Parse()

	counts, err := parseCounts(*countsFlag)
	if err != nil {
		log.Fatalf("[Bench] %v", err)
	}
	if *iterationsFlag < 1 {
		log.Fatalf("[Bench] --iterations must be at least 1")
	}

	rng := rand.New(rand.NewSource(*seedFlag))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "particles\tpairs\tbrute\tquadtree\tspeedup\t")

	for _, n := range counts {
		ps := randomParticles(rng, n, *widthFlag, *heightFlag)

		brute, bruteTime := measure(ps, field.IndexBrute, *distanceFlag, *iterationsFlag)
		quad, quadTime := measure(ps, field.IndexQuadTree, *distanceFlag, *iterationsFlag)
		if brute != quad {
			log.Fatalf("[Bench] pair count mismatch for %d particles: brute=%d quadtree=%d", n, brute, quad)
		}

		fmt.Fprintf(w, "%d\t%d\t%v\t%v\t%.2fx\t\n",
			n, brute, bruteTime, quadTime, float64(bruteTime)/float64(max(quadTime, 1)))
	}
	w.Flush()
}

// parseCounts 解析逗号分隔的粒子数量
func parseCounts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid particle count %q", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no particle counts given")
	}
	return out, nil
}

func randomParticles(rng *rand.Rand, n int, w, h float64) []field.Particle {
	ps := make([]field.Particle, n)
	for i := range ps {
		ps[i].Pos = field.Vec2{X: rng.Float64() * w, Y: rng.Float64() * h}
	}
	return ps
}

// measure 返回连线数量和单次查找的平均耗时
func measure(ps []field.Particle, index field.SpatialIndex, dist float64, iterations int) (int, time.Duration) {
	var buf []field.Connection
	start := time.Now()
	for i := 0; i < iterations; i++ {
		buf = field.FindConnections(ps, dist, index, buf[:0])
	}
	return len(buf), time.Since(start) / time.Duration(iterations)
}
