package pdb_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/matzehuels/patterndb/pkg/cube"
	"github.com/matzehuels/patterndb/pkg/pdb"
	"github.com/matzehuels/patterndb/pkg/pdb/corner"
)

func BenchmarkBuild(b *testing.B) {
	for _, workers := range []int{1, 4} {
		b.Run("workers="+strconv.Itoa(workers), func(b *testing.B) {
			for b.Loop() {
				db := pdb.New[cube.State](corner.NewPermutation[cube.State]())
				if err := db.Build(context.Background(), cube.Puzzle{}, pdb.WithWorkers(workers)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDistance(b *testing.B) {
	db := pdb.New[cube.State](corner.NewPermutation[cube.State]())
	if err := db.Build(context.Background(), cube.Puzzle{}); err != nil {
		b.Fatal(err)
	}
	s := cube.Solved().ApplyAll(cube.Scramble(1, 20))
	for b.Loop() {
		_, _ = db.Distance(s)
	}
}
