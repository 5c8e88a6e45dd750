package storyboard

import "math"

// CameraState is the camera center and zoom at a moment.
type CameraState struct {
	X    float64
	Y    float64
	Zoom float64
}

// CameraAt interpolates the camera between the keyframes around t.
func CameraAt(keyframes []Keyframe, t float64) CameraState {
	if len(keyframes) == 0 {
		return CameraState{Zoom: 1.0}
	}

	if t <= keyframes[0].Time {
		return stateOf(keyframes[0])
	}
	last := keyframes[len(keyframes)-1]
	if t >= last.Time {
		return stateOf(last)
	}

	var prev, next Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if t >= keyframes[i].Time && t < keyframes[i+1].Time {
			prev, next = keyframes[i], keyframes[i+1]
			break
		}
	}

	delta := next.Time - prev.Time
	if delta == 0 {
		delta = 0.001
	}
	f := easeInOutCubic((t - prev.Time) / delta)

	a, b := stateOf(prev), stateOf(next)
	return CameraState{
		X:    lerp(a.X, b.X, f),
		Y:    lerp(a.Y, b.Y, f),
		Zoom: lerp(a.Zoom, b.Zoom, f),
	}
}

func stateOf(kf Keyframe) CameraState {
	x, y := kf.Rect.Center()
	return CameraState{X: x, Y: y, Zoom: kf.Zoom}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
