package errors_test

import (
	"errors"

	prlerr "github/sabouaram/prologmqi/errors"
	prlterm "github/sabouaram/prologmqi/term"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FromTerm", func() {
	DescribeTable("classifies the remote functor into the right Kind",
		func(functor string, expected prlerr.Kind) {
			e := prlerr.FromTerm(prlterm.Compound(functor, prlterm.Atom("detail")))
			Expect(e.Kind()).To(Equal(expected))
		},
		Entry("time_limit_exceeded", "time_limit_exceeded", prlerr.KindQueryTimeout),
		Entry("cancel_goal", "cancel_goal", prlerr.KindQueryCancelled),
		Entry("no_query", "no_query", prlerr.KindNoQuery),
		Entry("connection_failed", "connection_failed", prlerr.KindConnectionFailed),
		Entry("syntax_error falls back to generic", "syntax_error", prlerr.KindGeneric),
		Entry("existence_error falls back to generic", "existence_error", prlerr.KindGeneric),
	)

	It("preserves the carried term for generic errors", func() {
		t := prlterm.Compound("syntax_error", prlterm.Atom("operator_expected"))
		e := prlerr.FromTerm(t)
		got, ok := e.Term()
		Expect(ok).To(BeTrue())
		Expect(got.Functor()).To(Equal("syntax_error"))
	})
})

var _ = Describe("IsOfKind", func() {
	It("matches the functor of the carried remote term", func() {
		e := prlerr.FromTerm(prlterm.Compound("existence_error", prlterm.Atom("procedure")))
		Expect(prlerr.IsOfKind(e, "existence_error")).To(BeTrue())
		Expect(prlerr.IsOfKind(e, "syntax_error")).To(BeFalse())
	})

	It("is false for errors without a carried term", func() {
		e := prlerr.NewNoQueryError("no pending query")
		Expect(prlerr.IsOfKind(e, "no_query")).To(BeFalse())
	})
})

var _ = Describe("Wrap", func() {
	It("unwraps to the original cause", func() {
		cause := errors.New("connection reset")
		e := prlerr.NewConnectionFailedError(cause)
		Expect(errors.Is(e, cause)).To(BeTrue())
		Expect(e.Kind()).To(Equal(prlerr.KindConnectionFailed))
	})
})
