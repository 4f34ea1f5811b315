package config_test

import (
	prlcfg "github/sabouaram/prologmqi/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func uint16p(v uint16) *uint16 { return &v }
func strp(v string) *string    { return &v }

var _ = Describe("SupervisorConfig.Validate", func() {
	It("accepts a plain TCP launch config", func() {
		c := prlcfg.SupervisorConfig{LaunchMQI: true, Port: uint16p(4242)}
		Expect(c.Validate()).To(BeNil())
	})

	It("rejects Port and UnixDomainSocket both set", func() {
		c := prlcfg.SupervisorConfig{LaunchMQI: true, Port: uint16p(4242), UnixDomainSocket: strp("")}
		err := c.Validate()
		Expect(err).ToNot(BeNil())
	})

	It("rejects OutputFileName without LaunchMQI", func() {
		c := prlcfg.SupervisorConfig{LaunchMQI: false, Port: uint16p(4242), OutputFileName: "out.log"}
		err := c.Validate()
		Expect(err).ToNot(BeNil())
	})

	It("accepts an auto-generated unix socket path when launching", func() {
		c := prlcfg.SupervisorConfig{LaunchMQI: true, UnixDomainSocket: strp("")}
		Expect(c.Validate()).To(BeNil())
	})

	It("performs no side effects on a rejected config", func() {
		c := prlcfg.SupervisorConfig{LaunchMQI: true, Port: uint16p(1), UnixDomainSocket: strp("/tmp/x")}
		_ = c.Validate()
		Expect(c.Port).ToNot(BeNil())
		Expect(c.UnixDomainSocket).ToNot(BeNil())
	})
})
