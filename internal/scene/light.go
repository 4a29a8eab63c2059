package scene

// Light is implemented by every light node type.
type Light interface {
	Object
	LightColor() Color
	LightIntensity() float32
}

// LightBase carries the state shared by all light types.
type LightBase struct {
	Object3D
	Color     Color
	Intensity float32
}

// LightColor implements Light.
func (l *LightBase) LightColor() Color { return l.Color }

// LightIntensity implements Light.
func (l *LightBase) LightIntensity() float32 { return l.Intensity }

// AmbientLight illuminates every surface uniformly.
type AmbientLight struct {
	LightBase
}

// NewAmbientLight creates an ambient light.
func NewAmbientLight(name string, c Color, intensity float32) *AmbientLight {
	l := &AmbientLight{}
	l.Object3D = NewObject3D(l, name)
	l.Color = c
	l.Intensity = intensity
	return l
}

// DirectionalLight illuminates from a direction, defined by the light's
// position looking at Target.
type DirectionalLight struct {
	LightBase
	Target Vec3
}

// NewDirectionalLight creates a directional light at the given position
// aimed at the origin.
func NewDirectionalLight(name string, c Color, intensity float32) *DirectionalLight {
	l := &DirectionalLight{}
	l.Object3D = NewObject3D(l, name)
	l.Color = c
	l.Intensity = intensity
	return l
}

// Direction returns the unit vector from the light towards its target.
func (l *DirectionalLight) Direction() Vec3 {
	return l.Target.Sub(l.Position).Normalize()
}

// PointLight emits in all directions from its position, attenuated over
// Distance.
type PointLight struct {
	LightBase
	Distance float32 // 0 = unlimited
	Decay    float32
}

// NewPointLight creates a point light.
func NewPointLight(name string, c Color, intensity, distance float32) *PointLight {
	l := &PointLight{Distance: distance, Decay: 2}
	l.Object3D = NewObject3D(l, name)
	l.Color = c
	l.Intensity = intensity
	return l
}

// SpotLight emits a cone from its position towards a separate target node.
// The target is a real graph node so disposal can remove both together.
type SpotLight struct {
	LightBase
	Angle    float32
	Penumbra float32
	Distance float32
	Target   *Group
}

// NewSpotLight creates a spot light and its target node. The caller adds
// both to the scene.
func NewSpotLight(name string, c Color, intensity, distance, angle float32) *SpotLight {
	l := &SpotLight{
		Angle:    angle,
		Distance: distance,
		Target:   NewGroup(name + "-target"),
	}
	l.Object3D = NewObject3D(l, name)
	l.Color = c
	l.Intensity = intensity
	return l
}

// IsLight reports whether obj is a light node of any type.
func IsLight(obj Object) bool {
	switch obj.(type) {
	case *AmbientLight, *DirectionalLight, *PointLight, *SpotLight:
		return true
	}
	return false
}
