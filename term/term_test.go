package term_test

import (
	prlterm "github/sabouaram/prologmqi/term"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Term encode", func() {
	DescribeTable("canonical source form",
		func(build func() prlterm.Term, expected string) {
			Expect(prlterm.Encode(build())).To(Equal(expected))
		},
		Entry("atom", func() prlterm.Term { return prlterm.Atom("a") }, "a"),
		Entry("integer", func() prlterm.Term { return prlterm.Integer(1) }, "1"),
		Entry("float", func() prlterm.Term { return prlterm.Float(1.1) }, "1.1"),
		Entry("compound arity 1", func() prlterm.Term { return prlterm.Compound("a", prlterm.Atom("b")) }, "a(b)"),
		Entry("compound arity 2", func() prlterm.Term {
			return prlterm.Compound("a", prlterm.Atom("b"), prlterm.Atom("c"))
		}, "a(b,c)"),
		Entry("list of compounds", func() prlterm.Term {
			return prlterm.List(prlterm.Compound("a", prlterm.Atom("b")), prlterm.Compound("b", prlterm.Atom("c")))
		}, "[a(b),b(c)]"),
		Entry("list of numbers", func() prlterm.Term {
			return prlterm.List(prlterm.Integer(2), prlterm.Float(1.1))
		}, "[2,1.1]"),
		Entry("atom needing quotes as arg", func() prlterm.Term {
			return prlterm.Compound("a", prlterm.Atom("b A"))
		}, "a('b A')"),
		Entry("atom starting with digit", func() prlterm.Term {
			return prlterm.Compound("a", prlterm.Atom("1b"))
		}, "a('1b')"),
		Entry("quoted functor with quoted args", func() prlterm.Term {
			return prlterm.Compound("a b", prlterm.List(prlterm.Atom("1b"), prlterm.Atom("a b")))
		}, "'a b'(['1b','a b'])"),
	)
})

var _ = Describe("Decode", func() {
	It("canonicalizes distinct variables in first-occurrence order", func() {
		v, err := prlterm.DecodeValue([]interface{}{"_1", "_a", "Auto"})
		Expect(err).ToNot(HaveOccurred())
		Expect(prlterm.Encode(v)).To(Equal("[A,B,C]"))
	})

	It("maps identical variable names within one value to the same letter", func() {
		v, err := prlterm.DecodeValue([]interface{}{"X", "X", "Y"})
		Expect(err).ToNot(HaveOccurred())
		Expect(prlterm.Encode(v)).To(Equal("[A,A,B]"))
	})

	It("does not share canonicalization across separate Decode calls", func() {
		v1, _ := prlterm.DecodeValue("X")
		v2, _ := prlterm.DecodeValue("Y")
		Expect(prlterm.Encode(v1)).To(Equal("A"))
		Expect(prlterm.Encode(v2)).To(Equal("A"))
	})

	It("decodes a compound object with functor and args", func() {
		v, err := prlterm.DecodeValue(map[string]interface{}{
			"functor": "thread",
			"args":    []interface{}{"g1", "c1"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Kind()).To(Equal(prlterm.KindCompound))
		Expect(v.Functor()).To(Equal("thread"))
		Expect(v.Arity()).To(Equal(2))
	})

	It("decodes an integer-valued JSON number as Integer not Float", func() {
		v, err := prlterm.DecodeValue(float64(42))
		Expect(err).ToNot(HaveOccurred())
		Expect(v.Kind()).To(Equal(prlterm.KindInteger))
		Expect(v.IntValue()).To(Equal(int64(42)))
	})

	It("accepts a single underscore as a valid variable name", func() {
		Expect(prlterm.IsValidVariableName("_")).To(BeTrue())
	})
})

var _ = Describe("IsValidVariableName", func() {
	It("accepts underscore-prefixed names", func() {
		Expect(prlterm.IsValidVariableName("_1")).To(BeTrue())
		Expect(prlterm.IsValidVariableName("_a")).To(BeTrue())
	})
	It("accepts upper-case leading names", func() {
		Expect(prlterm.IsValidVariableName("Auto")).To(BeTrue())
		Expect(prlterm.IsValidVariableName("X")).To(BeTrue())
	})
	It("rejects lower-case leading names", func() {
		Expect(prlterm.IsValidVariableName("auto")).To(BeFalse())
	})
})
