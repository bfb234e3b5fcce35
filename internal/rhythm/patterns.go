package rhythm

import "github.com/cbegin/vsge-go/internal/theory"

// Pattern turns a chord into events for one measure.
type Pattern interface {
	Name() string
	Description() string
	Generate(chord theory.Chord, beatsPerMeasure, bpm int, rng Rand) []Event
}

// Folk is a thumb-and-fingers arpeggio over eighth notes.
type Folk struct{}

var (
	folkTiming  = []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5}
	folkVoices  = []int{0, 2, 1, 2, 0, 2, 1, 2}
	folkVel     = []int{80, 60, 70, 60, 80, 60, 70, 60}
	folkAccents = []bool{true, false, false, false, true, false, false, false}
	folkJitter  = jitter{timingMs: 25, velocity: 5}
)

func (Folk) Name() string { return "Folk Fingerpicking" }
func (Folk) Description() string {
	return "Traditional folk fingerpicking with thumb on bass, fingers on melody"
}

func (Folk) Generate(chord theory.Chord, beatsPerMeasure, bpm int, rng Rand) []Event {
	notes := chord.Notes()
	if len(notes) == 0 {
		return nil
	}
	rng = orDefault(rng)
	var events []Event
	for i := 0; i < len(folkTiming) && i < beatsPerMeasure*2; i++ {
		voice := folkVoices[i%len(folkVoices)] % len(notes)
		vel := folkVel[i%len(folkVel)]
		tech := Finger
		if voice == 0 {
			vel += 10
			tech = Thumb
		}
		dt, dv := folkJitter.draw(rng, bpm)
		events = append(events, Event{
			Note:              notes[voice],
			Voice:             voice,
			Start:             folkTiming[i],
			Duration:          0.4,
			Velocity:          vel,
			TimingOffset:      dt,
			VelocityVariation: dv,
			Accent:            folkAccents[i%len(folkAccents)],
			Technique:         tech,
		})
	}
	return events
}

// Pop strums every chord tone on each eighth, down-up.
type Pop struct{}

var (
	popTiming     = []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5}
	popVel        = []int{90, 60, 85, 65, 90, 60, 85, 65}
	popTechniques = []Technique{Down, Up, Down, Up, Down, Up, Down, Up}
	popJitter     = jitter{timingMs: 15, velocity: 4}
)

func (Pop) Name() string { return "Pop Strumming" }
func (Pop) Description() string {
	return "Upbeat pop strumming with down-up pattern and strong downstrokes"
}

func (Pop) Generate(chord theory.Chord, beatsPerMeasure, bpm int, rng Rand) []Event {
	notes := chord.Notes()
	rng = orDefault(rng)
	var events []Event
	for i := 0; i < len(popTiming) && i < beatsPerMeasure*2; i++ {
		tech := popTechniques[i%len(popTechniques)]
		vel := popVel[i%len(popVel)]
		if tech == Down {
			vel += 5
		}
		for j, n := range notes {
			dt, dv := popJitter.draw(rng, bpm)
			events = append(events, Event{
				Note:              n,
				Voice:             j,
				Start:             popTiming[i] + float64(j)*0.02,
				Duration:          0.3,
				Velocity:          vel,
				TimingOffset:      dt,
				VelocityVariation: dv,
				Accent:            i%2 == 0,
				Technique:         tech,
			})
		}
	}
	return events
}

// Jazz comps on a syncopated grid and leans on the third and seventh.
type Jazz struct{}

var (
	jazzTiming  = []float64{0, 0.75, 1.5, 2.25, 3}
	jazzVel     = []int{70, 85, 70, 85, 70}
	jazzAccents = []bool{false, true, false, true, false}
	jazzJitter  = jitter{timingMs: 10, velocity: 3}
)

func (Jazz) Name() string        { return "Jazz Comping" }
func (Jazz) Description() string { return "Syncopated jazz comping with emphasis on beats 2 and 4" }

func (Jazz) Generate(chord theory.Chord, beatsPerMeasure, bpm int, rng Rand) []Event {
	notes := chord.Notes()
	rng = orDefault(rng)
	var events []Event
	for i := 0; i < len(jazzTiming) && i < beatsPerMeasure; i++ {
		for j, n := range notes {
			vel := jazzVel[i%len(jazzVel)]
			if j == 1 || j == 3 {
				vel += 10
			}
			dt, dv := jazzJitter.draw(rng, bpm)
			events = append(events, Event{
				Note:              n,
				Voice:             j,
				Start:             jazzTiming[i] + float64(j)*0.01,
				Duration:          0.6,
				Velocity:          vel,
				TimingOffset:      dt,
				VelocityVariation: dv,
				Accent:            jazzAccents[i%len(jazzAccents)],
				Technique:         Block,
			})
		}
	}
	return events
}

// Rock hits root and fifth on every beat.
type Rock struct{}

var (
	rockTiming = []float64{0, 1, 2, 3}
	rockJitter = jitter{timingMs: 5, velocity: 2}
)

func (Rock) Name() string { return "Rock Power" }
func (Rock) Description() string {
	return "Aggressive rock power chord pattern with strong downstrokes"
}

func (Rock) Generate(chord theory.Chord, beatsPerMeasure, bpm int, rng Rand) []Event {
	notes := chord.Notes()
	if len(notes) == 0 {
		return nil
	}
	rng = orDefault(rng)
	voices := []int{0}
	if fifth := 2 % len(notes); fifth != 0 {
		voices = append(voices, fifth)
	}
	var events []Event
	for i := 0; i < len(rockTiming) && i < beatsPerMeasure; i++ {
		for k, voice := range voices {
			vel := 110
			if k == 1 {
				vel -= 5
			}
			dt, dv := rockJitter.draw(rng, bpm)
			events = append(events, Event{
				Note:              notes[voice],
				Voice:             voice,
				Start:             rockTiming[i] + float64(k)*0.01,
				Duration:          0.8,
				Velocity:          vel,
				TimingOffset:      dt,
				VelocityVariation: dv,
				Accent:            true,
				Technique:         Down,
			})
		}
	}
	return events
}
