package supervisor_test

import (
	"bufio"
	"net"

	prlcfg "github/sabouaram/prologmqi/config"
	"github/sabouaram/prologmqi/internal/mqitest"
	prlsup "github/sabouaram/prologmqi/supervisor"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("New", func() {
	It("rejects an invalid config synchronously, with no side effects", func() {
		bad := uint16(4242)
		sock := "/tmp/whatever.sock"
		cfg := prlcfg.SupervisorConfig{Port: &bad, UnixDomainSocket: &sock}

		_, err := prlsup.New(cfg, nil, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects launch-less config missing both port and socket", func() {
		_, err := prlsup.New(prlcfg.SupervisorConfig{}, nil, nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Connect against an already-running server", func() {
	It("dials the configured endpoint and tracks the Connection for teardown", func() {
		srv := mqitest.Start(GinkgoT(), func(conn net.Conn, r *bufio.Reader) {
			Expect(mqitest.ReadFrame(r)).To(Equal("secret."))
			mqitest.WriteFrame(conn, `{"functor":"thread","args":["g1","c1"]}`)
		})
		port := srv.Port()

		sup, err := prlsup.New(prlcfg.SupervisorConfig{Port: &port, Password: "secret"}, nil, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(sup.Endpoint().Port).To(Equal(port))

		conn, err := sup.Connect()
		Expect(err).ToNot(HaveOccurred())
		Expect(conn.GoalThreadID()).To(Equal("g1"))

		Expect(sup.Close()).To(Succeed())
		Expect(sup.Close()).To(Succeed()) // idempotent
	})
})

var _ = Describe("DiagnoseThreadStatus", func() {
	It("reports Alive when true/0 succeeds", func() {
		srv := mqitest.Start(GinkgoT(), func(conn net.Conn, r *bufio.Reader) {
			_ = mqitest.ReadFrame(r)
			mqitest.WriteFrame(conn, `{"functor":"thread","args":["g1","c1"]}`)
			Expect(mqitest.ReadFrame(r)).To(Equal("run(true,null)."))
			mqitest.WriteFrame(conn, `{"functor":"true","args":[[[]]]}`)
		})
		port := srv.Port()
		sup, err := prlsup.New(prlcfg.SupervisorConfig{Port: &port, Password: "secret"}, nil, nil)
		Expect(err).ToNot(HaveOccurred())
		conn, err := sup.Connect()
		Expect(err).ToNot(HaveOccurred())

		Expect(prlsup.DiagnoseThreadStatus(conn)).To(Equal(prlsup.ThreadStatusAlive))
	})

	It("reports Gone when the probe raises exception($aborted)", func() {
		srv := mqitest.Start(GinkgoT(), func(conn net.Conn, r *bufio.Reader) {
			_ = mqitest.ReadFrame(r)
			mqitest.WriteFrame(conn, `{"functor":"thread","args":["g1","c1"]}`)
			Expect(mqitest.ReadFrame(r)).To(Equal("run(true,null)."))
			mqitest.WriteFrame(conn, `{"functor":"exception","args":[{"functor":"$aborted"}]}`)
		})
		port := srv.Port()
		sup, err := prlsup.New(prlcfg.SupervisorConfig{Port: &port, Password: "secret"}, nil, nil)
		Expect(err).ToNot(HaveOccurred())
		conn, err := sup.Connect()
		Expect(err).ToNot(HaveOccurred())

		Expect(prlsup.DiagnoseThreadStatus(conn)).To(Equal(prlsup.ThreadStatusGone))
	})
})
