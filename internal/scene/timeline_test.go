package scene_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/lorenzsim/internal/scene"
	"github.com/san-kum/lorenzsim/internal/viz"
)

const deg = math.Pi / 180

var _ = Describe("Lorenz timeline", func() {
	var tl *scene.Timeline

	BeforeEach(func() {
		var err error
		tl, err = scene.Compile(scene.LorenzScript(10))
		Expect(err).NotTo(HaveOccurred())
	})

	It("lasts 22.6 seconds", func() {
		Expect(tl.Duration()).To(BeNumerically("~", 22.6, 1e-9))
		Expect(tl.FrameCount(30)).To(Equal(678))
	})

	It("starts from the default pose with the axes visible", func() {
		s := tl.At(0)
		Expect(s.Pose).To(Equal(viz.DefaultPose()))
		Expect(s.ShowAxes).To(BeTrue())
		Expect(s.Axes).To(Equal(scene.LorenzAxes()))
		Expect(s.ShowPath).To(BeFalse())
		Expect(s.RotationRate).To(BeZero())
	})

	It("eases the first camera move", func() {
		mid := tl.At(0.5)
		Expect(mid.Pose.Phi).To(BeNumerically("~", 30*deg, 1e-12))
		Expect(mid.Pose.Zoom).To(BeNumerically("~", 0.875, 1e-12))

		early := tl.At(0.1)
		Expect(early.Pose.Phi).To(BeNumerically("<", 0.1*60*deg), "cubic easing starts slowly")
	})

	It("reaches the first target at t=1", func() {
		s := tl.At(1)
		Expect(s.Pose.Phi).To(BeNumerically("~", 60*deg, 1e-12))
		Expect(s.Pose.Theta).To(BeNumerically("~", -45*deg, 1e-12))
		Expect(s.Pose.Zoom).To(BeNumerically("~", 0.75, 1e-12))
		Expect(s.Pose.Center.Z).To(BeNumerically("~", 2, 1e-12))
		Expect(s.RotationRate).To(Equal(0.05))
		Expect(s.ShowPath).To(BeTrue())
		Expect(s.Progress).To(BeZero())
	})

	It("draws the path at a linear rate", func() {
		for _, tc := range []struct{ t, progress float64 }{
			{1, 0}, {3.5, 0.25}, {6, 0.5}, {8.5, 0.75}, {10.999, 0.9999},
		} {
			Expect(tl.At(tc.t).Progress).To(BeNumerically("~", tc.progress, 1e-9), "t=%v", tc.t)
		}
		Expect(tl.At(11).Progress).To(Equal(1.0))
		Expect(tl.At(20).Progress).To(Equal(1.0))
	})

	It("rotates at 0.05 rad/s while drawing", func() {
		a, b := tl.At(2), tl.At(7)
		Expect(b.Pose.Theta - a.Pose.Theta).To(BeNumerically("~", 0.25, 1e-9))
		Expect(b.Pose.Phi).To(Equal(a.Pose.Phi))
	})

	It("turns the path green after the half second pause", func() {
		Expect(tl.At(11.25).PathColor).To(Equal(scene.Blue))
		Expect(tl.At(11.499).PathColor).To(Equal(scene.Blue))
		Expect(tl.At(11.5).PathColor).To(Equal(scene.Green))
		Expect(tl.At(22.6).PathColor).To(Equal(scene.Green))
	})

	It("replaces the rotation rate instead of stacking it", func() {
		s := tl.At(11.55)
		Expect(s.RotationRate).To(Equal(0.1))

		a, b := tl.At(14), tl.At(20)
		Expect(b.Pose.Theta - a.Pose.Theta).To(BeNumerically("~", 0.6, 1e-9))
	})

	It("replaces the rate even without a stop in between", func() {
		tl, err := scene.Compile([]scene.Action{
			scene.BeginRotation{Rate: 0.05},
			scene.BeginRotation{Rate: 0.1},
			scene.Wait{Duration: 2},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(tl.At(1).RotationRate).To(Equal(0.1))
		Expect(tl.At(2).Pose.Theta - tl.At(0).Pose.Theta).To(BeNumerically("~", 0.2, 1e-9))
	})

	It("keeps the azimuth continuous across segments", func() {
		for _, t := range []float64{1, 11, 11.5, 11.6, 12.6} {
			before, after := tl.At(t-1e-9), tl.At(t)
			Expect(after.Pose.Theta-before.Pose.Theta).To(BeNumerically("~", 0, 1e-6), "t=%v", t)
		}
	})

	It("zooms back in while the rotation continues", func() {
		start := tl.At(11.6)
		mid := tl.At(12.1)
		end := tl.At(12.6)

		Expect(start.Pose.Zoom).To(BeNumerically("~", 0.75, 1e-12))
		Expect(mid.Pose.Zoom).To(BeNumerically("~", 0.875, 1e-12))
		Expect(mid.Pose.Center.Z).To(BeNumerically("~", 2.5, 1e-12))
		Expect(end.Pose.Zoom).To(BeNumerically("~", 1, 1e-12))
		Expect(end.Pose.Center).To(Equal(r3.Vec{Z: 3}))

		Expect(end.Pose.Phi).To(BeNumerically("~", 60*deg, 1e-12), "elevation untouched by the second move")
		Expect(end.Pose.Theta - start.Pose.Theta).To(BeNumerically("~", 0.1, 1e-9))
	})

	It("clamps times outside the timeline", func() {
		Expect(tl.At(-5)).To(Equal(tl.At(0)))
		Expect(tl.At(100)).To(Equal(tl.At(tl.Duration())))
	})

	It("lists its timed segments", func() {
		var names []string
		for _, s := range tl.Segments() {
			names = append(names, s.Name)
		}
		Expect(names).To(Equal([]string{"move_camera", "create", "wait", "wait", "move_camera", "wait"}))
	})
})

var _ = Describe("FrameTimes", func() {
	It("samples the timeline at i/fps", func() {
		tl, err := scene.Compile([]scene.Action{scene.Wait{Duration: 1}})
		Expect(err).NotTo(HaveOccurred())

		times := tl.FrameTimes(4)
		Expect(times).To(Equal([]float64{0, 0.25, 0.5, 0.75}))
		Expect(tl.FrameTimes(0)).To(BeEmpty())
	})
})

var _ = Describe("Compile", func() {
	DescribeTable("rejects invalid actions",
		func(a scene.Action, msg string) {
			_, err := scene.Compile([]scene.Action{scene.Wait{Duration: 1}, a})
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("negative wait", scene.Wait{Duration: -1}, "action 1 (wait)"),
		Entry("zero-length create", scene.Create{}, "duration must be positive"),
		Entry("non-positive zoom", scene.MoveCamera(1, scene.Zoom(0)), "zoom must be positive"),
		Entry("empty axes", scene.AddAxes{}, "axis ranges"),
		Entry("nil", nil, "is nil"),
	)

	It("accepts a script of instant actions only", func() {
		tl, err := scene.Compile([]scene.Action{scene.BeginRotation{Rate: 1}, scene.SetColor{Color: scene.Green}})
		Expect(err).NotTo(HaveOccurred())
		Expect(tl.Duration()).To(BeZero())
		Expect(tl.At(3).PathColor).To(Equal(scene.Green))
		Expect(tl.FrameCount(30)).To(Equal(1))
	})
})
