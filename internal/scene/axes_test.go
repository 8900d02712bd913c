package scene_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

func vecNear(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-12
}

var _ = Describe("Axes", func() {
	axes := scene.LorenzAxes()

	It("maps data coordinates onto the scene", func() {
		Expect(vecNear(axes.C2P(r3.Vec{}), r3.Vec{})).To(BeTrue())
		Expect(vecNear(axes.C2P(r3.Vec{X: 50}), r3.Vec{X: 5.25})).To(BeTrue())
		Expect(vecNear(axes.C2P(r3.Vec{Y: -50}), r3.Vec{Y: -5.25})).To(BeTrue())
		Expect(vecNear(axes.C2P(r3.Vec{Z: 50}), r3.Vec{Z: 6.5})).To(BeTrue())
		Expect(vecNear(axes.C2P(r3.Vec{X: 10, Y: 10, Z: 10}), r3.Vec{X: 1.05, Y: 1.05, Z: 1.3})).To(BeTrue())
	})

	It("centres ranges that do not straddle zero", func() {
		a := axes
		a.X = scene.Range{Min: 10, Max: 30, Step: 5}
		a.XLength = 4
		Expect(vecNear(a.C2P(r3.Vec{X: 20}), r3.Vec{})).To(BeTrue())
		Expect(vecNear(a.C2P(r3.Vec{X: 30}), r3.Vec{X: 2})).To(BeTrue())
	})

	It("places ticks every five units", func() {
		Expect(axes.X.Ticks()).To(HaveLen(21))
		Expect(axes.Z.Ticks()).To(HaveLen(11))
		Expect(axes.Z.Ticks()[10]).To(Equal(50.0))

		zt := axes.TickPoints(2)
		Expect(zt).To(HaveLen(11))
		Expect(vecNear(zt[0], r3.Vec{})).To(BeTrue())
		Expect(axes.TickPoints(3)).To(BeNil())
	})

	It("draws the axis lines through the origin", func() {
		lines := axes.Lines()
		Expect(vecNear(lines[0][0], r3.Vec{X: -5.25})).To(BeTrue())
		Expect(vecNear(lines[1][1], r3.Vec{Y: 5.25})).To(BeTrue())
		Expect(vecNear(lines[2][0], r3.Vec{})).To(BeTrue())
		Expect(vecNear(lines[2][1], r3.Vec{Z: 6.5})).To(BeTrue())
	})
})

var _ = Describe("PartialPath", func() {
	path := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}}

	It("is empty before drawing starts", func() {
		Expect(scene.PartialPath(path, 0)).To(BeEmpty())
	})

	It("is the whole path when drawing is done", func() {
		Expect(scene.PartialPath(path, 1)).To(Equal(path))
		Expect(scene.PartialPath(path, 2)).To(Equal(path))
	})

	It("interpolates the leading point", func() {
		got := scene.PartialPath(path, 0.3)
		Expect(got).To(HaveLen(3))
		Expect(got[2].X).To(BeNumerically("~", 1.2, 1e-12))
		Expect(got[:2]).To(Equal(path[:2]))
	})
})

var _ = Describe("New", func() {
	tr := &trajectory.Trajectory{
		Times:  []float64{0, 0.01, 0.02},
		Points: []dynamo.State{{0, 0, 0}, {50, 0, 0}, {0, 0, 50}},
		Dt:     0.01,
	}

	It("maps the trajectory through the script's axes", func() {
		sc, err := scene.NewLorenz(tr, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Path).To(HaveLen(3))
		Expect(vecNear(sc.Path[1], r3.Vec{X: 5.25})).To(BeTrue())
		Expect(vecNear(sc.Path[2], r3.Vec{Z: 6.5})).To(BeTrue())
		Expect(sc.Timeline.Duration()).To(BeNumerically("~", 22.6, 1e-9))
	})

	It("rejects a degenerate trajectory", func() {
		_, err := scene.NewLorenz(&trajectory.Trajectory{}, 10)
		Expect(err).To(HaveOccurred())
	})
})
