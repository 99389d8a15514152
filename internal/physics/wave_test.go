package physics_test

import (
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ripple/internal/dynamo"
	"github.com/san-kum/ripple/internal/physics"
)

// newBasin returns a 5-sample chain resting at height 100 on a 500x200 surface.
func newBasin(mode physics.Mode) *physics.Field {
	f := physics.NewField(5, 500, 200)
	f.Mode = mode
	f.Params.Tension = 0.025
	f.Params.Damping = 0.98
	return f
}

var allModes = []physics.Mode{
	{},
	physics.DefaultMode(),
	{Boundary: physics.BoundaryBounce, ConserveVolume: true, Propagate: true},
	{Boundary: physics.BoundaryBounce, Interaction: physics.InteractionImpulse, Pull: true},
	{ConserveVolume: true, Propagate: true, Pull: true},
}

var _ = Describe("Field", func() {
	Describe("construction", func() {
		It("starts every sample at equilibrium with zero velocity", func() {
			f := physics.NewField(10, 800, 600)
			Expect(f.Equilibrium()).To(Equal(300.0))
			for i := 0; i < f.N(); i++ {
				Expect(f.HeightAt(i)).To(Equal(300.0))
				Expect(f.VelocityAt(i)).To(BeZero())
			}
		})

		It("never builds an empty chain", func() {
			Expect(physics.NewField(0, 100, 100).N()).To(Equal(1))
		})
	})

	DescribeTable("a chain at rest stays at rest",
		func(n int) {
			for _, mode := range allModes {
				f := physics.NewField(n, 640, 480)
				f.Mode = mode
				for step := 0; step < 500; step++ {
					f.Advance(nil)
				}
				for i := 0; i < n; i++ {
					Expect(f.HeightAt(i)).To(BeNumerically("~", f.Equilibrium(), 1e-9))
				}
			}
		},
		Entry("two samples", 2),
		Entry("three samples", 3),
		Entry("ten samples", 10),
		Entry("a hundred samples", 100),
		Entry("two hundred samples", 200),
	)

	It("settles a quiet five-sample basin within one unit after 1000 steps", func() {
		f := newBasin(physics.DefaultMode())
		for step := 0; step < 1000; step++ {
			f.Advance(nil)
		}
		for i := 0; i < f.N(); i++ {
			Expect(f.HeightAt(i)).To(BeNumerically("~", 100, 1.0))
		}
	})

	Describe("volume correction", func() {
		It("keeps the total height constant across repeated steps", func() {
			rng := rand.New(rand.NewSource(7))
			f := physics.NewField(64, 640, 480)
			f.Mode = physics.Mode{ConserveVolume: true, Propagate: true, Pull: true}
			for i := 0; i < f.N(); i++ {
				f.SetVelocity(i, rng.Float64()*20-10)
			}
			f.SetHeight(10, f.HeightAt(10)-30)
			f.SetHeight(11, f.HeightAt(11)+30)

			for step := 0; step < 300; step++ {
				before := f.Volume()
				f.Advance(nil)
				Expect(f.Volume()).To(BeNumerically("~", before, 1e-6))
			}
		})

		It("leaves the sum unchanged after a single impulse", func() {
			f := newBasin(physics.Mode{ConserveVolume: true})
			f.SetVelocity(2, -10)
			before := f.Volume()

			f.Advance(nil)

			Expect(f.Volume()).To(BeNumerically("~", before, 1e-6))
			Expect(f.HeightAt(2)).To(BeNumerically("~", 92.16, 1e-9))
			Expect(f.HeightAt(1)).To(BeNumerically("~", f.HeightAt(0), 1e-12))
			Expect(f.HeightAt(3)).To(BeNumerically("~", f.HeightAt(4), 1e-12))
		})
	})

	Describe("second-pass propagation", func() {
		run := func(propagate bool) *physics.Field {
			f := newBasin(physics.Mode{ConserveVolume: true, Propagate: propagate})
			f.SetVelocity(2, -10)
			f.Advance(nil)
			return f
		}

		It("does not touch heights on the tick it runs", func() {
			with, without := run(true), run(false)
			for i := 0; i < 5; i++ {
				Expect(with.HeightAt(i)).To(BeNumerically("~", without.HeightAt(i), 1e-12))
			}
		})

		It("nudges the neighbors toward the disturbed sample", func() {
			with, without := run(true), run(false)
			Expect(without.VelocityAt(1)).To(BeZero())
			Expect(without.VelocityAt(3)).To(BeZero())
			Expect(with.VelocityAt(1)).To(BeNumerically("~", -0.98, 1e-9))
			Expect(with.VelocityAt(3)).To(BeNumerically("~", -0.98, 1e-9))
		})

		It("moves the neighbors further on the following tick", func() {
			with, without := run(true), run(false)
			with.Advance(nil)
			without.Advance(nil)
			lift := func(f *physics.Field) float64 { return f.HeightAt(0) - f.HeightAt(1) }
			Expect(lift(with)).To(BeNumerically(">", lift(without)))
		})
	})

	Describe("boundary policy", func() {
		It("clamps a sunken sample to the bottom edge", func() {
			f := newBasin(physics.Mode{Boundary: physics.BoundaryClamp})
			f.SetHeight(2, 250)
			f.Advance(nil)
			Expect(f.HeightAt(2)).To(Equal(200.0))
		})

		It("reflects a sinking sample upward when bouncing", func() {
			f := newBasin(physics.Mode{Boundary: physics.BoundaryBounce})
			f.SetHeight(2, 250)
			f.SetVelocity(2, 100)
			f.Advance(nil)
			Expect(f.HeightAt(2)).To(Equal(200.0))
			Expect(f.VelocityAt(2)).To(BeNumerically("<=", 0))
		})

		It("leaves an already rising clamped sample rising", func() {
			f := newBasin(physics.Mode{Boundary: physics.BoundaryBounce})
			f.SetHeight(2, 250)
			f.Advance(nil)
			Expect(f.HeightAt(2)).To(Equal(200.0))
			Expect(f.VelocityAt(2)).To(BeNumerically("<=", 0))
		})

		It("keeps samples from rising above rest when bouncing", func() {
			f := newBasin(physics.Mode{Boundary: physics.BoundaryBounce})
			f.SetHeight(2, 50)
			f.SetVelocity(2, -10)
			f.Advance(nil)
			Expect(f.HeightAt(2)).To(Equal(100.0))
			Expect(f.VelocityAt(2)).To(BeNumerically(">", 0))
		})

		It("lets samples rise above rest in clamp-only mode", func() {
			f := newBasin(physics.Mode{Boundary: physics.BoundaryClamp})
			f.SetVelocity(2, -10)
			f.Advance(nil)
			Expect(f.HeightAt(2)).To(BeNumerically("<", 100))
		})
	})

	It("couples to a neighbor sitting at height zero", func() {
		f := physics.NewField(3, 300, 200)
		f.Mode = physics.Mode{}
		f.Params.Damping = 1
		f.Params.Viscosity = 1
		f.Params.Tension = 0.1
		f.SetHeight(0, 0)

		f.Advance(nil)
		Expect(f.HeightAt(0)).To(BeNumerically("~", 10, 1e-9))
		Expect(f.HeightAt(1)).To(BeNumerically("~", 90, 1e-9))
		Expect(f.HeightAt(2)).To(BeNumerically("~", 100, 1e-9))
	})

	Describe("degenerate chains", func() {
		It("advances a single sample without lateral coupling", func() {
			f := physics.NewField(1, 100, 100)
			f.Mode = physics.Mode{}
			f.SetVelocity(0, -5)
			Expect(func() {
				for step := 0; step < 100; step++ {
					f.Advance(nil)
				}
			}).NotTo(Panic())
			Expect(f.IsValid()).To(BeTrue())
		})
	})

	It("accepts runaway damping without failing", func() {
		f := physics.NewField(20, 200, 200)
		f.Mode = physics.Mode{}
		f.Params.Damping = 1.5
		f.SetVelocity(10, -1)
		for step := 0; step < 50; step++ {
			f.Advance(nil)
		}
		Expect(f.Peak()).To(BeNumerically(">", 10))
		Expect(math.IsNaN(f.Peak())).To(BeFalse())
	})

	Describe("influence", func() {
		It("adds the perturbation to the velocity after integration", func() {
			f := newBasin(physics.Mode{})
			f.SetVelocity(1, 5)
			var seen float64
			push := physics.InfluenceFunc(func(i int, x, h float64) float64 {
				if i == 1 {
					seen = h
					return -3
				}
				return 0
			})

			f.Advance(push)
			Expect(seen).To(BeNumerically("~", 104.9, 1e-9))
			Expect(f.HeightAt(1)).To(BeNumerically("~", 104.9, 1e-9))
			Expect(f.VelocityAt(1)).To(BeNumerically("~", 1.9, 1e-9))
			Expect(f.HeightAt(0)).To(Equal(100.0))
		})

		It("moves the height on the following step", func() {
			f := newBasin(physics.Mode{})
			f.Advance(physics.InfluenceFunc(func(i int, x, h float64) float64 {
				if i == 1 {
					return -3
				}
				return 0
			}))
			Expect(f.HeightAt(1)).To(Equal(100.0))
			Expect(f.VelocityAt(1)).To(Equal(-3.0))

			f.Advance(nil)
			Expect(f.HeightAt(1)).To(BeNumerically("<", 100.0))
		})

		It("reports sample positions along the surface", func() {
			f := newBasin(physics.Mode{})
			var xs []float64
			f.Advance(physics.InfluenceFunc(func(i int, x, h float64) float64 {
				xs = append(xs, x)
				return 0
			}))
			Expect(xs).To(Equal([]float64{0, 100, 200, 300, 400}))
		})
	})

	Describe("parameters", func() {
		It("resets the chain when the level changes", func() {
			f := newBasin(physics.DefaultMode())
			f.SetVelocity(2, -10)
			f.Advance(nil)

			Expect(f.SetParam("level", 0.25)).To(Succeed())
			Expect(f.Equilibrium()).To(Equal(50.0))
			for i := 0; i < f.N(); i++ {
				Expect(f.HeightAt(i)).To(Equal(50.0))
				Expect(f.VelocityAt(i)).To(BeZero())
			}
		})

		It("changes knobs without resetting the chain", func() {
			f := newBasin(physics.Mode{})
			f.SetVelocity(2, -10)
			f.Advance(nil)
			h := f.HeightAt(2)

			Expect(f.SetParam("damping", 0.5)).To(Succeed())
			Expect(f.Params.Damping).To(Equal(0.5))
			Expect(f.HeightAt(2)).To(Equal(h))
		})

		It("rejects unknown names", func() {
			err := physics.NewField(3, 30, 30).SetParam("nope", 1)
			Expect(errors.Is(err, dynamo.ErrUnknownParam)).To(BeTrue())
		})

		It("lists every knob plus level", func() {
			params := physics.NewField(3, 30, 30).GetParams()
			for _, name := range physics.ParamNames {
				Expect(params).To(HaveKey(name))
			}
			Expect(params).To(HaveKeyWithValue("level", physics.DefaultLevel))
		})
	})

	It("resets on resize with the new equilibrium", func() {
		f := physics.NewField(8, 400, 300)
		f.SetVelocity(3, -20)
		f.Advance(nil)
		f.Resize(800, 1000)
		Expect(f.Equilibrium()).To(Equal(500.0))
		Expect(f.Peak()).To(BeZero())
		Expect(f.Energy()).To(BeZero())
		Expect(f.SegmentWidth()).To(Equal(100.0))
	})
})

var _ = Describe("mode parsing", func() {
	DescribeTable("boundary names",
		func(in string, want physics.Boundary) {
			got, err := physics.ParseBoundary(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("clamp", "clamp", physics.BoundaryClamp),
		Entry("bounce", "Bounce", physics.BoundaryBounce),
		Entry("long form", "clamp-and-bounce", physics.BoundaryBounce),
	)

	It("rejects unknown interaction names", func() {
		_, err := physics.ParseInteraction("swirl")
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})
})
