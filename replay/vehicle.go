package replay

import (
	"math"

	"github.com/unixpickle/nocturneagent"
	"gonum.org/v1/gonum/spatial/r2"
)

// minSteerSpeed is the speed below which the steering of
// a logged transition is taken to be zero.
const minSteerSpeed = 0.1

// Vehicle is a simulated vehicle in an Env.
type Vehicle struct {
	id  nocturneagent.AgentID
	obj *Object

	pos     r2.Vec
	heading float64
	speed   float64

	// logged is false while the vehicle follows its log
	// and the log has no entry for the current timestep.
	logged bool

	expert bool
	done   bool
}

// ID returns the object's index in the scenario file.
func (v *Vehicle) ID() nocturneagent.AgentID {
	return v.id
}

func (v *Vehicle) Position() r2.Vec {
	return v.pos
}

func (v *Vehicle) Speed() float64 {
	return v.speed
}

func (v *Vehicle) ExpertControl() bool {
	return v.expert
}

func (v *Vehicle) SetExpertControl(expert bool) {
	v.expert = expert
}

// setLogged moves the vehicle to its logged state at t.
// If the log has no entry at t, the vehicle stays put.
func (v *Vehicle) setLogged(t int) {
	if !v.obj.validAt(t) {
		v.logged = false
		return
	}
	v.logged = true
	v.pos = v.obj.Position[t].Vec()
	v.heading = v.obj.Heading[t]
	v.speed = r2.Norm(v.obj.Velocity[t].Vec())
}

// integrate advances the kinematic bicycle model.
func (v *Vehicle) integrate(act nocturneagent.ContinuousAction, dt float64) {
	v.logged = true
	newSpeed := v.speed + act.Acceleration*dt
	yawRate := v.speed * math.Tan(act.Steering) / v.wheelbase()
	dHeading := yawRate * dt
	avgSpeed := (v.speed + newSpeed) / 2
	midHeading := v.heading + dHeading/2
	v.pos = r2.Add(v.pos, r2.Vec{
		X: avgSpeed * math.Cos(midHeading) * dt,
		Y: avgSpeed * math.Sin(midHeading) * dt,
	})
	v.heading = wrapAngle(v.heading + dHeading)
	v.speed = newSpeed
}

// present reports whether the vehicle takes part in
// collisions and observations.
func (v *Vehicle) present() bool {
	return !v.done && v.logged
}

// radius approximates the vehicle footprint with a
// circle.
func (v *Vehicle) radius() float64 {
	return math.Min(v.obj.Width, v.obj.Length) / 2
}

func (v *Vehicle) wheelbase() float64 {
	if v.obj.Length <= 0 {
		return 1
	}
	return v.obj.Length
}

// expertAction inverts the kinematic model between the
// logged states at t and t+1.
func expertAction(obj *Object, t int, dt float64) nocturneagent.ContinuousAction {
	v0 := r2.Norm(obj.Velocity[t].Vec())
	v1 := r2.Norm(obj.Velocity[t+1].Vec())
	res := nocturneagent.ContinuousAction{Acceleration: (v1 - v0) / dt}
	if v0 > minSteerSpeed {
		length := obj.Length
		if length <= 0 {
			length = 1
		}
		yawRate := wrapAngle(obj.Heading[t+1]-obj.Heading[t]) / dt
		res.Steering = math.Atan(yawRate * length / v0)
	}
	return res
}

func wrapAngle(theta float64) float64 {
	return math.Remainder(theta, 2*math.Pi)
}
