package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/df07/go-reflax-raytracer/pkg/core"
	"github.com/df07/go-reflax-raytracer/pkg/loaders"
	"github.com/df07/go-reflax-raytracer/pkg/material"
)

// Texture files NewDefaultScene loads from its texture directory
const (
	SkyboxTextureFile   = "skybox.tga"
	PeriodicTextureFile = "periodic.tga"
)

// View describes where a camera starts
type View struct {
	Eye    core.Vec3
	LookAt core.Vec3
	FOV    float64 // horizontal field of view in radians
}

// DefaultView is the camera placement that frames the default scene
var DefaultView = View{
	Eye:    core.NewVec3(7.427, 3.494, -3.773),
	LookAt: core.NewVec3(6.5981, 3.127, -3.352),
	FOV:    1.05,
}

// NewDefaultScene loads the skybox and floor textures from textureDir and
// builds the default scene: eight spheres on a tiled floor lit by a distant sun.
func NewDefaultScene(textureDir string) (*Scene, error) {
	skyboxTexture, err := loaders.LoadTexture(filepath.Join(textureDir, SkyboxTextureFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load skybox texture: %w", err)
	}

	periodicTexture, err := loaders.LoadTexture(filepath.Join(textureDir, PeriodicTextureFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load floor texture: %w", err)
	}

	return BuildDefaultScene(skyboxTexture, periodicTexture), nil
}

// BuildDefaultScene builds the default scene from already loaded textures
func BuildDefaultScene(skyboxTexture, periodicTexture *material.Texture) *Scene {
	s := NewScene(NewSkybox(skyboxTexture), core.NewColor(0.95, 0.95, 1.0), 0.15)

	// sun
	s.AddSpotLight(core.NewVec3(11.8e9, 4.26e9, 3.08e9), 3.48e8, core.NewColor(1.0, 1.0, 0.95), 0.85)

	white := core.NewColor(1, 1, 1)

	// Large mirror spheres
	s.AddSphere(core.NewVec3(-1.25, 1.5, -0.25), 1.5, material.NewMetal(white, 1.0))
	s.AddSphere(core.NewVec3(0.15, 1.0, 1.75), 1.0, material.NewMetal(white, 0.95))

	// Dielectric spheres
	s.AddSphere(core.NewVec3(-3.0, 0.6, -3.0), 0.6, material.NewDielectric(white, 0.0))
	s.AddSphere(core.NewVec3(-0.5, 0.5, -2.5), 0.5, material.NewDielectric(core.NewColor(0.5, 1.0, 0.15), 0.75))
	s.AddSphere(core.NewVec3(1.0, 0.4, -1.5), 0.4, material.NewDielectric(core.NewColor(0.0, 0.5, 1.0), 1.0))

	// Tinted metal spheres
	s.AddSphere(core.NewVec3(1.8, 0.4, 0.1), 0.4, material.NewMetal(core.NewColor(1.0, 0.65, 0.45), 1.0))
	s.AddSphere(core.NewVec3(1.7, 0.5, 1.9), 0.5, material.NewMetal(core.NewColor(1.0, 0.90, 0.60), 0.75))
	s.AddSphere(core.NewVec3(0.6, 0.6, 4.2), 0.6, material.NewMetal(core.NewColor(0.9, 0.9, 0.9), 0.0))

	// Floor: two triangles sharing the periodic texture
	corners := [4]core.Vec3{
		core.NewVec3(-14.0, 0.0, -10.0),
		core.NewVec3(-14.0, 0.0, 10.0),
		core.NewVec3(14.0, 0.0, 10.0),
		core.NewVec3(14.0, 0.0, -10.0),
	}
	uvs := [4]core.Vec2{
		core.NewVec2(0, 0),
		core.NewVec2(0, 1),
		core.NewVec2(1, 1),
		core.NewVec2(1, 0),
	}
	floor := material.NewDielectric(white, 0.95)

	s.AddTexturedTriangle(corners[0], corners[1], corners[3], floor, periodicTexture,
		[3]core.Vec2{uvs[0], uvs[1], uvs[3]})
	s.AddTexturedTriangle(corners[1], corners[2], corners[3], floor, periodicTexture,
		[3]core.Vec2{uvs[1], uvs[2], uvs[3]})

	return s
}

// NewPeriodicTexture generates the floor tile texture used by the default scene
func NewPeriodicTexture(size int) *material.Texture {
	tileSize := max(size/8, 2)
	return material.NewTileTexture(size, tileSize, max(tileSize/16, 1),
		core.NewColor(0.92, 0.9, 0.85),
		core.NewColor(0.55, 0.5, 0.45),
		core.NewColor(0.2, 0.2, 0.2),
	)
}

// WriteDefaultTextures generates procedural skybox and floor textures and
// writes them where NewDefaultScene expects them.
func WriteDefaultTextures(textureDir string, tileSize int) error {
	if err := os.MkdirAll(textureDir, 0o755); err != nil {
		return fmt.Errorf("failed to create texture directory: %w", err)
	}

	skybox := filepath.Join(textureDir, SkyboxTextureFile)
	if err := loaders.SaveTexture(skybox, NewSkyboxAtlas(tileSize)); err != nil {
		return fmt.Errorf("failed to write skybox texture: %w", err)
	}

	periodic := filepath.Join(textureDir, PeriodicTextureFile)
	if err := loaders.SaveTexture(periodic, NewPeriodicTexture(tileSize*2)); err != nil {
		return fmt.Errorf("failed to write floor texture: %w", err)
	}
	return nil
}
