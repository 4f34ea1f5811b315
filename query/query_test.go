package query_test

import (
	"bufio"
	"net"
	"time"

	prlcfg "github/sabouaram/prologmqi/config"
	prlconn "github/sabouaram/prologmqi/connection"
	prlerr "github/sabouaram/prologmqi/errors"
	"github/sabouaram/prologmqi/internal/mqitest"
	prlquery "github/sabouaram/prologmqi/query"
	prlterm "github/sabouaram/prologmqi/term"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func dial(script mqitest.Script) *prlconn.Connection {
	srv := mqitest.Start(GinkgoT(), func(conn net.Conn, r *bufio.Reader) {
		_ = mqitest.ReadFrame(r) // password
		mqitest.WriteFrame(conn, `{"functor":"thread","args":["g1","c1"]}`)
		script(conn, r)
	})
	c, err := prlconn.Dial(prlcfg.TCPLoopback(srv.Port()), "secret", nil)
	Expect(err).ToNot(HaveOccurred())
	return c
}

var _ = Describe("Synchronous Query", func() {
	It("returns the boolean true for a query with no free variables", func() {
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			Expect(mqitest.ReadFrame(r)).To(Equal("run(atom(a),null)."))
			mqitest.WriteFrame(conn, `{"functor":"true","args":[[[]]]}`)
		})
		ch := prlquery.New(conn, nil, nil)

		ans, err := ch.Query("atom(a)", nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(ans.Kind).To(Equal(prlquery.AnswerTrue))
	})

	It("returns one binding per solution with UTF-8 preserved", func() {
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			Expect(mqitest.ReadFrame(r)).To(Equal(`run(member(X,[1,'©','≠']),null).`))
			mqitest.WriteFrame(conn, `{"functor":"true","args":[[[["X",1]],[["X","©"]],[["X","≠"]]]]}`)
		})
		ch := prlquery.New(conn, nil, nil)

		ans, err := ch.Query(`member(X,[1,'©','≠'])`, nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(ans.Kind).To(Equal(prlquery.AnswerBindings))
		Expect(ans.Bindings).To(HaveLen(3))
		Expect(ans.Bindings[0]["X"]).To(Equal(prlterm.Integer(1)))
		Expect(ans.Bindings[1]["X"]).To(Equal(prlterm.Atom("©")))
		Expect(ans.Bindings[2]["X"]).To(Equal(prlterm.Atom("≠")))
	})

	It("raises PrologQueryTimeoutError when the server reports time_limit_exceeded", func() {
		one := 1.0
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			_ = mqitest.ReadFrame(r)
			mqitest.WriteFrame(conn, `{"functor":"exception","args":[{"functor":"time_limit_exceeded"}]}`)
		})
		ch := prlquery.New(conn, nil, nil)

		_, err := ch.Query("sleep(3)", &one)
		Expect(err).To(HaveOccurred())
		pe := err.(prlerr.Error)
		Expect(pe.Kind()).To(Equal(prlerr.KindQueryTimeout))
	})

	It("raises a generic PrologError whose term's functor is syntax_error", func() {
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			_ = mqitest.ReadFrame(r)
			mqitest.WriteFrame(conn, `{"functor":"exception","args":[{"functor":"syntax_error","args":["operator_expected"]}]}`)
		})
		ch := prlquery.New(conn, nil, nil)

		_, err := ch.Query(`member(X,[first,second,third]`, nil)
		Expect(err).To(HaveOccurred())
		Expect(prlerr.IsOfKind(err, "syntax_error")).To(BeTrue())
	})

	It("consumes heartbeats silently and counts them", func() {
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			_ = mqitest.ReadFrame(r)
			mqitest.WriteFrame(conn, ".")
			mqitest.WriteFrame(conn, ".")
			mqitest.WriteFrame(conn, `{"functor":"true","args":[[[]]]}`)
		})
		ch := prlquery.New(conn, nil, nil)

		ans, err := ch.Query("sleep(3)", nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(ans.Kind).To(Equal(prlquery.AnswerTrue))
		Expect(ch.HeartbeatCount()).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Asynchronous Query", func() {
	It("yields one buffered success, then PrologQueryCancelledError after a cancel", func() {
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			Expect(mqitest.ReadFrame(r)).To(Equal("run_async(g,null,false)."))

			Expect(mqitest.ReadFrame(r)).To(Equal("async_result(null)."))
			mqitest.WriteFrame(conn, `{"functor":"true","args":[[[["X",{"functor":"=","args":["a","a"]}],["Y","a"]]]]}`)

			Expect(mqitest.ReadFrame(r)).To(Equal("cancel_async."))

			Expect(mqitest.ReadFrame(r)).To(Equal("async_result(null)."))
			mqitest.WriteFrame(conn, `{"functor":"exception","args":[{"functor":"cancel_goal"}]}`)
		})
		ch := prlquery.New(conn, nil, nil)

		Expect(ch.QueryAsync("g", nil, false)).To(Succeed())

		ans, err := ch.QueryAsyncResult(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(ans.Bindings).To(HaveLen(1))

		Expect(ch.CancelQueryAsync()).To(Succeed())

		_, err = ch.QueryAsyncResult(nil)
		Expect(err).To(HaveOccurred())
		pe := err.(prlerr.Error)
		Expect(pe.Kind()).To(Equal(prlerr.KindQueryCancelled))
	})

	It("cancels a pending query before submitting a re-submit", func() {
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			Expect(mqitest.ReadFrame(r)).To(Equal("run_async(first,null,false)."))
			Expect(mqitest.ReadFrame(r)).To(Equal("cancel_async."))
			Expect(mqitest.ReadFrame(r)).To(Equal("run_async(second,null,false)."))

			Expect(mqitest.ReadFrame(r)).To(Equal("async_result(null)."))
			mqitest.WriteFrame(conn, `{"functor":"true","args":[[[["X","second-answer"]]]]}`)
		})
		ch := prlquery.New(conn, nil, nil)

		Expect(ch.QueryAsync("first", nil, false)).To(Succeed())
		Expect(ch.QueryAsync("second", nil, false)).To(Succeed())

		ans, err := ch.QueryAsyncResult(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(ans.Bindings[0]["X"]).To(Equal(prlterm.Atom("second-answer")))
	})

	It("raises PrologNoQueryError asking for a result with nothing pending", func() {
		conn := dial(func(conn net.Conn, r *bufio.Reader) {})
		ch := prlquery.New(conn, nil, nil)

		_, err := ch.QueryAsyncResult(nil)
		Expect(err).To(HaveOccurred())
		pe := err.(prlerr.Error)
		Expect(pe.Kind()).To(Equal(prlerr.KindNoQuery))
	})

	It("raises PrologResultNotAvailableError on a wait=0 peek before the server has answered, then decodes the real answer on the next poll", func() {
		zero := 0.0
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			Expect(mqitest.ReadFrame(r)).To(Equal("run_async(g,null,false)."))

			Expect(mqitest.ReadFrame(r)).To(Equal("async_result(0)."))
			time.Sleep(50 * time.Millisecond) // outlast the client's non-blocking peek deadline

			Expect(mqitest.ReadFrame(r)).To(Equal("async_result(null)."))
			mqitest.WriteFrame(conn, `{"functor":"true","args":[[[["X","late-answer"]]]]}`)
		})
		ch := prlquery.New(conn, nil, nil)

		Expect(ch.QueryAsync("g", nil, false)).To(Succeed())

		_, err := ch.QueryAsyncResult(&zero)
		Expect(err).To(HaveOccurred())
		Expect(prlerr.IsResultNotAvailable(err)).To(BeTrue())

		ans, err := ch.QueryAsyncResult(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(ans.Bindings[0]["X"]).To(Equal(prlterm.Atom("late-answer")))
	})

	It("raises PrologNoQueryError cancelling a query twice", func() {
		conn := dial(func(conn net.Conn, r *bufio.Reader) {
			Expect(mqitest.ReadFrame(r)).To(Equal("run_async(g,null,false)."))
			Expect(mqitest.ReadFrame(r)).To(Equal("cancel_async."))
		})
		ch := prlquery.New(conn, nil, nil)

		Expect(ch.QueryAsync("g", nil, false)).To(Succeed())
		Expect(ch.CancelQueryAsync()).To(Succeed())

		err := ch.CancelQueryAsync()
		Expect(err).To(HaveOccurred())
		pe := err.(prlerr.Error)
		Expect(pe.Kind()).To(Equal(prlerr.KindNoQuery))
	})
})
