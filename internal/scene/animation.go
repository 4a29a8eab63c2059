package scene

// Animation is a tagged animation descriptor attached to a node. Each
// variant is pure data; the component ticking the scene dispatches on the
// concrete type. Multiple descriptors compose on one node (a guardian stone
// carries an Orbit and a Spin).
type Animation interface {
	isAnimation()
}

// Breathing oscillates a material or particle opacity:
// opacity = BaseOpacity + sin(t*Speed + Phase) * Range.
type Breathing struct {
	BaseOpacity float32
	Range       float32
	Speed       float32
	Phase       float32
}

// Spin rotates a node at fixed Euler rates (radians per second).
type Spin struct {
	Speed Vec3
}

// Orbit moves a node on a horizontal circle around Center with an optional
// vertical bob. Position is a pure function of elapsed time.
type Orbit struct {
	Center       Vec3
	Radius       float32
	AngularSpeed float32
	Phase        float32
	BaseHeight   float32
	BobAmplitude float32
	BobSpeed     float32
}

// FloatBob oscillates a node vertically around BaseY.
type FloatBob struct {
	BaseY     float32
	Amplitude float32
	Speed     float32
	Phase     float32
}

// PulseLight oscillates a light's intensity:
// intensity = Base + sin(t*Speed + Phase) * Amplitude.
type PulseLight struct {
	Base      float32
	Amplitude float32
	Speed     float32
	Phase     float32
}

// EmissivePulse oscillates a material's emissive intensity.
type EmissivePulse struct {
	Base      float32
	Amplitude float32
	Speed     float32
	Phase     float32
}

// Swim moves a node on a horizontal circle facing along its direction of
// travel, with a vertical wiggle. Used by the fish school.
type Swim struct {
	Center        Vec3
	Radius        float32
	AngularSpeed  float32
	Phase         float32
	BaseY         float32
	VerticalAmp   float32
	VerticalSpeed float32
}

// Advect marks a particle system whose points integrate their velocities
// each frame and respawn near RespawnY when rising past CeilingY. Used by
// smoke and fire columns.
type Advect struct {
	CeilingY      float32
	RespawnY      float32
	RespawnRadius float32
}

func (Breathing) isAnimation()     {}
func (Spin) isAnimation()          {}
func (Orbit) isAnimation()         {}
func (FloatBob) isAnimation()      {}
func (PulseLight) isAnimation()    {}
func (EmissivePulse) isAnimation() {}
func (Swim) isAnimation()          {}
func (Advect) isAnimation()        {}
