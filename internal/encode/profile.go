package encode

// Trigger is one geometric crush-initiation feature on a tube wall.
type Trigger struct {
	Position float64 `json:"position"`
	Depth    float64 `json:"depth"`
	Height   float64 `json:"height"`
}

// Trigger role defaults for groups the design vector does not control.
const defaultTriggerHeight = 3.0

// TriggerGroups distributes a CrashTube physical parameter vector over its
// trigger groups in round-robin order (position, depth, height). Vectors of
// up to 15 components control five mirrored groups, larger vectors control
// ten independent ones; groups beyond the vector keep their defaults.
func TriggerGroups(physical []float64) []Trigger {
	groups := 5
	if len(physical) > 15 {
		groups = 10
	}

	triggers := make([]Trigger, groups)
	for i := range triggers {
		triggers[i] = Trigger{Height: defaultTriggerHeight}
	}

	for i, v := range physical {
		g := i / 3
		if g >= groups {
			break
		}
		switch i % 3 {
		case 0:
			triggers[g].Position = v
		case 1:
			triggers[g].Depth = v
		case 2:
			triggers[g].Height = v
		}
	}
	return triggers
}

// ThicknessProfile linearly interpolates per-layer thicknesses from control
// values evenly spaced between first and last, sampled at count evenly spaced
// positions over the same span. Samples outside the control span clamp to the
// nearest control value.
func ThicknessProfile(controls []float64, count int) []float64 {
	if count <= 0 || len(controls) == 0 {
		return nil
	}
	if len(controls) == 1 {
		out := make([]float64, count)
		for i := range out {
			out[i] = controls[0]
		}
		return out
	}

	out := make([]float64, count)
	n := len(controls)
	for i := range out {
		var t float64
		if count > 1 {
			t = float64(i) / float64(count-1) * float64(n-1)
		}
		j := int(t)
		if j >= n-1 {
			out[i] = controls[n-1]
			continue
		}
		frac := t - float64(j)
		out[i] = controls[j] + frac*(controls[j+1]-controls[j])
	}
	return out
}
