package playback_test

import (
	"fmt"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/playback"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/trajectory"
)

func ExampleSequencer() {
	tokens := []trajectory.TokenVector{
		{Token: "Hi", Destination: trajectory.Vec3{X: 1}, IsInput: true},
		{Token: "there", Destination: trajectory.Vec3{X: 1, Y: 1}},
	}

	seq := playback.New(tokens, playback.DefaultOptions())
	seq.Play()

	ticks := 0
	phase := seq.State().Phase
	for !seq.Done() {
		seq.Tick()
		ticks++
		if p := seq.State().Phase; p != phase {
			fmt.Printf("tick %d: %s -> %s\n", ticks, phase, p)
			phase = p
		}
	}
	fmt.Println("playing:", seq.State().Playing)
	// Output:
	// tick 18: idle -> gathering
	// tick 38: gathering -> growing
	// tick 63: growing -> idle
	// playing: false
}

func ExampleCompose() {
	tokens := []trajectory.TokenVector{
		{Token: "Hi", Destination: trajectory.Vec3{X: 1}, IsInput: true},
		{Token: "there", Destination: trajectory.Vec3{X: 1, Y: 2}},
	}

	f := playback.Compose(tokens, playback.State{Phase: playback.Growing, Progress: 0.5, Speed: 1})
	for _, s := range f.Segments {
		fmt.Printf("%s -> %s growing=%v\n", s.Start, s.End, s.Growing)
	}
	// Output:
	// (0.000, 0.000, 0.000) -> (1.000, 0.000, 0.000) growing=false
	// (1.000, 0.000, 0.000) -> (1.000, 1.000, 0.000) growing=true
}
