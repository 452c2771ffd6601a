package intersect

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func vecAlmostEqual(a, b mgl64.Vec3, tolerance float64) bool {
	return a.Sub(b).Len() <= tolerance
}

func createSphere(position mgl64.Vec3, radius float64) *actor.Sphere {
	return actor.NewSphere(position, radius)
}

func createBox(position, halfExtents mgl64.Vec3) *actor.Box {
	return actor.NewBox(position, halfExtents)
}

func createOrientedBox(position, halfExtents mgl64.Vec3, angle float64, axis mgl64.Vec3) *actor.OrientedBox {
	return actor.NewOrientedBox(position, halfExtents, mgl64.QuatRotate(angle, axis.Normalize()))
}

func TestIntersect_Pairs(t *testing.T) {
	unit := mgl64.Vec3{1, 1, 1}
	tests := []struct {
		name     string
		a, b     actor.Shape
		expected bool
	}{
		{"sphere/sphere overlapping", createSphere(mgl64.Vec3{0, 0, 0}, 1), createSphere(mgl64.Vec3{1.5, 0, 0}, 1), true},
		{"sphere/sphere touching", createSphere(mgl64.Vec3{0, 0, 0}, 1), createSphere(mgl64.Vec3{2, 0, 0}, 1), true},
		{"sphere/sphere separated", createSphere(mgl64.Vec3{0, 0, 0}, 1), createSphere(mgl64.Vec3{2.1, 0, 0}, 1), false},
		{"sphere/box face", createSphere(mgl64.Vec3{1.9, 0, 0}, 1), createBox(mgl64.Vec3{}, unit), true},
		// corner distance is sqrt(3)*0.8 = 1.39 > 1
		{"sphere/box corner gap", createSphere(mgl64.Vec3{1.8, 1.8, 1.8}, 1), createBox(mgl64.Vec3{}, unit), false},
		{"box/box overlapping", createBox(mgl64.Vec3{}, unit), createBox(mgl64.Vec3{1.5, 1.5, 0}, unit), true},
		{"box/box separated", createBox(mgl64.Vec3{}, unit), createBox(mgl64.Vec3{0, 2.5, 0}, unit), false},
		{"box/oriented box rotated reach", createBox(mgl64.Vec3{}, unit), createOrientedBox(mgl64.Vec3{2.3, 0, 0}, unit, math.Pi/4, mgl64.Vec3{0, 0, 1}), true},
		{"box/oriented box rotated gap", createBox(mgl64.Vec3{}, unit), createOrientedBox(mgl64.Vec3{2.5, 0, 0}, unit, math.Pi/4, mgl64.Vec3{0, 0, 1}), false},
		// aabbs overlap but the edge of the rotated box does not reach the corner
		{"oriented/oriented edge gap", createOrientedBox(mgl64.Vec3{}, unit, math.Pi/4, mgl64.Vec3{0, 0, 1}), createOrientedBox(mgl64.Vec3{2.3, 2.3, 0}, unit, math.Pi/4, mgl64.Vec3{0, 0, 1}), false},
		{"sphere/oriented box", createSphere(mgl64.Vec3{0, 1.9, 0}, 0.5), createOrientedBox(mgl64.Vec3{}, unit, math.Pi/4, mgl64.Vec3{1, 0, 0}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersect(tt.a, tt.b); got != tt.expected {
				t.Errorf("Intersect(a, b) = %v, want %v", got, tt.expected)
			}
			if got := Intersect(tt.b, tt.a); got != tt.expected {
				t.Errorf("Intersect(b, a) = %v, want %v (symmetry)", got, tt.expected)
			}
		})
	}
}

func TestResolveSphereSphere(t *testing.T) {
	a := createSphere(mgl64.Vec3{-0.9, 0, 0}, 1)
	b := createSphere(mgl64.Vec3{0.9, 0, 0}, 1)

	res, ok := Resolve(a, b)
	if !ok {
		t.Fatal("spheres should overlap")
	}
	if !vecAlmostEqual(res.Normal, mgl64.Vec3{-1, 0, 0}, 1e-12) {
		t.Errorf("Normal = %v, want -X (toward a)", res.Normal)
	}
	if math.Abs(res.Depth-0.2) > 1e-12 {
		t.Errorf("Depth = %v, want 0.2", res.Depth)
	}
	if !vecAlmostEqual(res.Point, mgl64.Vec3{0, 0, 0}, 1e-12) {
		t.Errorf("Point = %v, want origin", res.Point)
	}

	flipped, _ := Resolve(b, a)
	if !vecAlmostEqual(flipped.Normal, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("swapped Normal = %v, want +X", flipped.Normal)
	}
}

func TestResolveSphereSphere_Concentric(t *testing.T) {
	res := ResolveSphereSphere(createSphere(mgl64.Vec3{}, 1), createSphere(mgl64.Vec3{}, 2))
	if res.Normal != actor.Up {
		t.Errorf("Normal = %v, want the up fallback", res.Normal)
	}
	if math.Abs(res.Depth-3) > 1e-12 {
		t.Errorf("Depth = %v, want 3", res.Depth)
	}
}

func TestResolveBoxBox(t *testing.T) {
	a := createBox(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := createBox(mgl64.Vec3{1.5, 0.2, 0}, mgl64.Vec3{1, 1, 1})

	res, ok := Resolve(a, b)
	if !ok {
		t.Fatal("boxes should overlap")
	}
	if res.Normal != (mgl64.Vec3{-1, 0, 0}) {
		t.Errorf("Normal = %v, want -X", res.Normal)
	}
	if math.Abs(res.Depth-0.5) > 1e-12 {
		t.Errorf("Depth = %v, want 0.5", res.Depth)
	}
	if !vecAlmostEqual(res.Point, mgl64.Vec3{0.75, 0.1, 0}, 1e-12) {
		t.Errorf("Point = %v", res.Point)
	}
}

func TestResolveSphereBox(t *testing.T) {
	box := createBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})

	t.Run("center outside", func(t *testing.T) {
		s := createSphere(mgl64.Vec3{0, 1.5, 0}, 1)
		res, ok := Resolve(s, box)
		if !ok {
			t.Fatal("should overlap")
		}
		if !vecAlmostEqual(res.Normal, mgl64.Vec3{0, 1, 0}, 1e-12) {
			t.Errorf("Normal = %v", res.Normal)
		}
		if math.Abs(res.Depth-0.5) > 1e-12 {
			t.Errorf("Depth = %v", res.Depth)
		}
		if !vecAlmostEqual(res.Point, mgl64.Vec3{0, 1, 0}, 1e-12) {
			t.Errorf("Point = %v", res.Point)
		}
	})

	t.Run("center inside", func(t *testing.T) {
		s := createSphere(mgl64.Vec3{0.8, 0, 0}, 0.5)
		res, ok := Resolve(s, box)
		if !ok {
			t.Fatal("should overlap")
		}
		if !vecAlmostEqual(res.Normal, mgl64.Vec3{1, 0, 0}, 1e-12) {
			t.Errorf("Normal = %v", res.Normal)
		}
		// 0.2 to the face plus the radius
		if math.Abs(res.Depth-0.7) > 1e-12 {
			t.Errorf("Depth = %v", res.Depth)
		}
	})

	t.Run("box first", func(t *testing.T) {
		s := createSphere(mgl64.Vec3{0, 1.5, 0}, 1)
		res, _ := Resolve(box, s)
		if !vecAlmostEqual(res.Normal, mgl64.Vec3{0, -1, 0}, 1e-12) {
			t.Errorf("Normal = %v, want toward the box", res.Normal)
		}
	})
}

func TestResolveOrientedBox(t *testing.T) {
	a := createOrientedBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, 0, mgl64.Vec3{0, 0, 1})
	b := createOrientedBox(mgl64.Vec3{2.2, 0, 0}, mgl64.Vec3{1, 1, 1}, math.Pi/4, mgl64.Vec3{0, 0, 1})

	res, ok := Resolve(a, b)
	if !ok {
		t.Fatal("boxes should overlap")
	}
	if !vecAlmostEqual(res.Normal, mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Errorf("Normal = %v, want -X", res.Normal)
	}
	expected := 1 + math.Sqrt2 - 2.2
	if math.Abs(res.Depth-expected) > 1e-9 {
		t.Errorf("Depth = %v, want %v", res.Depth, expected)
	}
}

func randomShape(rng *rand.Rand) actor.Shape {
	position := mgl64.Vec3{rng.Float64()*3 - 1.5, rng.Float64()*3 - 1.5, rng.Float64()*3 - 1.5}
	half := mgl64.Vec3{0.2 + rng.Float64(), 0.2 + rng.Float64(), 0.2 + rng.Float64()}
	switch rng.Intn(3) {
	case 0:
		return createSphere(position, 0.2+rng.Float64())
	case 1:
		return createBox(position, half)
	default:
		axis := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}
		if axis.Len() < 1e-3 {
			axis = mgl64.Vec3{0, 0, 1}
		}
		return createOrientedBox(position, half, rng.Float64()*2*math.Pi, axis)
	}
}

func TestResolve_SeparatesShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	checked := 0
	for i := 0; i < 2000; i++ {
		a := randomShape(rng)
		b := randomShape(rng)

		res, ok := Resolve(a, b)
		if !ok {
			continue
		}
		checked++

		if math.Abs(res.Normal.Len()-1) > 1e-6 {
			t.Fatalf("normal %v is not unit length (%T vs %T)", res.Normal, a, b)
		}
		if res.Depth < 0 {
			t.Fatalf("negative depth %v", res.Depth)
		}

		a.SetPosition(a.Center().Add(res.Normal.Mul(res.Depth*1.001 + 1e-6)))
		if Intersect(a, b) {
			t.Fatalf("%T and %T still overlap after moving by the resolution (normal %v depth %v)", a, b, res.Normal, res.Depth)
		}
	}

	if checked < 100 {
		t.Fatalf("only %d overlapping pairs generated", checked)
	}
}

func TestRayCast(t *testing.T) {
	ray := actor.NewRay(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0})

	tests := []struct {
		name     string
		shape    actor.Shape
		hit      bool
		distance float64
	}{
		{"sphere", createSphere(mgl64.Vec3{}, 1), true, 4},
		{"sphere behind", createSphere(mgl64.Vec3{-8, 0, 0}, 1), false, 0},
		{"sphere off axis", createSphere(mgl64.Vec3{0, 3, 0}, 1), false, 0},
		{"box", createBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}), true, 4},
		{"box missed", createBox(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{1, 1, 1}), false, 0},
		{"oriented box", createOrientedBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, math.Pi/4, mgl64.Vec3{0, 0, 1}), true, 5 - math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := RayCast(ray, tt.shape)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math.Abs(d-tt.distance) > 1e-9 {
				t.Errorf("distance = %v, want %v", d, tt.distance)
			}
		})
	}
}

func TestRayCast_OriginInside(t *testing.T) {
	ray := actor.NewRay(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	if d, ok := RayCast(ray, createSphere(mgl64.Vec3{}, 1)); !ok || d != 0 {
		t.Errorf("inside sphere: %v %v", d, ok)
	}
	if d, ok := RayCast(ray, createBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1})); !ok || d != 0 {
		t.Errorf("inside box: %v %v", d, ok)
	}
}

func TestFrustumCulling(t *testing.T) {
	f := actor.NewFrustum(mgl64.Ortho(-1, 1, -1, 1, 1, 10))

	tests := []struct {
		name    string
		shape   actor.Shape
		visible bool
	}{
		{"sphere inside", createSphere(mgl64.Vec3{0, 0, -5}, 0.5), true},
		{"sphere straddling", createSphere(mgl64.Vec3{1.2, 0, -5}, 0.5), true},
		{"sphere outside", createSphere(mgl64.Vec3{3, 0, -5}, 0.5), false},
		{"sphere behind camera", createSphere(mgl64.Vec3{0, 0, 5}, 0.5), false},
		{"box inside", createBox(mgl64.Vec3{0, 0, -5}, mgl64.Vec3{0.5, 0.5, 0.5}), true},
		{"box outside", createBox(mgl64.Vec3{0, -4, -5}, mgl64.Vec3{0.5, 0.5, 0.5}), false},
		{"oriented box straddling", createOrientedBox(mgl64.Vec3{1.5, 0, -5}, mgl64.Vec3{0.5, 0.5, 0.5}, math.Pi/4, mgl64.Vec3{0, 0, 1}), true},
		{"oriented box outside", createOrientedBox(mgl64.Vec3{2, 0, -5}, mgl64.Vec3{0.5, 0.5, 0.5}, math.Pi/4, mgl64.Vec3{0, 0, 1}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InFrustum(f, tt.shape); got != tt.visible {
				t.Errorf("InFrustum = %v, want %v", got, tt.visible)
			}
		})
	}

	if !FrustumPoint(f, mgl64.Vec3{0, 0, -2}) || FrustumPoint(f, mgl64.Vec3{0, 0, -11}) {
		t.Error("FrustumPoint near/far planes")
	}
}

func TestClosestPoints(t *testing.T) {
	point := mgl64.Vec3{3, 0, 0}

	if got := ClosestPointSphere(createSphere(mgl64.Vec3{}, 1), point); !vecAlmostEqual(got, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("sphere: %v", got)
	}
	if got := ClosestPointBox(createBox(mgl64.Vec3{}, mgl64.Vec3{1, 2, 1}), mgl64.Vec3{3, 3, 0}); got != (mgl64.Vec3{1, 2, 0}) {
		t.Errorf("box: %v", got)
	}
	obb := createOrientedBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}, math.Pi/4, mgl64.Vec3{0, 0, 1})
	if got := ClosestPointOrientedBox(obb, point); !vecAlmostEqual(got, mgl64.Vec3{math.Sqrt2, 0, 0}, 1e-9) {
		t.Errorf("oriented box: %v", got)
	}

	ok, p := SphereBoxPoint(createSphere(mgl64.Vec3{1.5, 0, 0}, 1), createBox(mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}))
	if !ok || p != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("SphereBoxPoint = %v %v", ok, p)
	}
}

func TestSphereSpherePoint(t *testing.T) {
	tests := []struct {
		name     string
		a        *actor.Sphere
		expected bool
	}{
		{"overlapping", createSphere(mgl64.Vec3{1.5, 0, 0}, 1), true},
		{"touching", createSphere(mgl64.Vec3{2, 0, 0}, 1), true},
		{"separated", createSphere(mgl64.Vec3{3, 0, 0}, 1), false},
	}

	b := createSphere(mgl64.Vec3{}, 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, p := SphereSpherePoint(tt.a, b)
			if ok != tt.expected {
				t.Errorf("overlap = %v, want %v", ok, tt.expected)
			}
			// the point of b facing a, whether they touch or not
			if !vecAlmostEqual(p, mgl64.Vec3{1, 0, 0}, 1e-12) {
				t.Errorf("point = %v, want (1, 0, 0)", p)
			}
		})
	}
}
