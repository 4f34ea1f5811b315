package connection_test

import (
	"bufio"
	"net"

	prlcfg "github/sabouaram/prologmqi/config"
	prlconn "github/sabouaram/prologmqi/connection"
	prlerr "github/sabouaram/prologmqi/errors"
	"github/sabouaram/prologmqi/internal/mqitest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Dial", func() {
	It("completes the handshake and records thread ids", func() {
		srv := mqitest.Start(GinkgoT(), func(conn net.Conn, r *bufio.Reader) {
			pw := mqitest.ReadFrame(r)
			Expect(pw).To(Equal("secret."))
			mqitest.WriteFrame(conn, `{"functor":"thread","args":["g1","c1"]}`)
		})

		c, err := prlconn.Dial(prlcfg.TCPLoopback(srv.Port()), "secret", nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(c.GoalThreadID()).To(Equal("g1"))
		Expect(c.CommThreadID()).To(Equal("c1"))
	})

	It("returns a PrologConnectionFailedError when the server rejects the password", func() {
		srv := mqitest.Start(GinkgoT(), func(conn net.Conn, r *bufio.Reader) {
			_ = mqitest.ReadFrame(r)
			mqitest.WriteFrame(conn, `{"functor":"connection_failed","args":["bad_password"]}`)
		})

		_, err := prlconn.Dial(prlcfg.TCPLoopback(srv.Port()), "wrong", nil)
		Expect(err).To(HaveOccurred())
		pe, ok := err.(prlerr.Error)
		Expect(ok).To(BeTrue())
		Expect(pe.Kind()).To(Equal(prlerr.KindConnectionFailed))
	})

	It("fails to dial a port nothing is listening on", func() {
		_, err := prlconn.Dial(prlcfg.TCPLoopback(1), "secret", nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Send/Receive after the handshake", func() {
	It("exchanges additional frames over the same connection", func() {
		srv := mqitest.Start(GinkgoT(), func(conn net.Conn, r *bufio.Reader) {
			_ = mqitest.ReadFrame(r)
			mqitest.WriteFrame(conn, `{"functor":"thread","args":["g1","c1"]}`)

			msg := mqitest.ReadFrame(r)
			Expect(msg).To(Equal("run(atom(a),10)."))
			mqitest.WriteFrame(conn, `{"functor":"true","args":[[[]]]}`)
		})

		c, err := prlconn.Dial(prlcfg.TCPLoopback(srv.Port()), "secret", nil)
		Expect(err).ToNot(HaveOccurred())

		Expect(c.Send("run(atom(a),10).")).To(Succeed())
		payload, err := c.Receive()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(payload)).To(Equal(`{"functor":"true","args":[[[]]]}`))
	})
})
