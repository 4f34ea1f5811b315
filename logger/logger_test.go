package logger_test

import (
	"bytes"
	"errors"

	"github.com/sirupsen/logrus"

	"github/sabouaram/prologmqi/logger"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newBufferedLogger(buf *bytes.Buffer) logger.Logger {
	base := logrus.New()
	base.SetOutput(buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.DebugLevel)
	return logger.New(base)
}

var _ = Describe("Logger", func() {
	It("writes Info messages with attached fields", func() {
		buf := &bytes.Buffer{}
		log := newBufferedLogger(buf)

		log.WithFields(logger.Fields{"goal_thread_id": "g1"}).Info("handshake succeeded")

		Expect(buf.String()).To(ContainSubstring("handshake succeeded"))
		Expect(buf.String()).To(ContainSubstring("g1"))
	})

	It("writes Error messages with the wrapped cause", func() {
		buf := &bytes.Buffer{}
		log := newBufferedLogger(buf)

		log.Error("connection broken", errors.New("EOF"))

		Expect(buf.String()).To(ContainSubstring("connection broken"))
		Expect(buf.String()).To(ContainSubstring("EOF"))
	})

	It("handles a nil error without panicking", func() {
		buf := &bytes.Buffer{}
		log := newBufferedLogger(buf)

		Expect(func() { log.Error("something went wrong", nil) }).ToNot(Panic())
		Expect(buf.String()).To(ContainSubstring("something went wrong"))
	})

	It("Discard drops everything without panicking", func() {
		log := logger.Discard()
		Expect(func() {
			log.WithFields(logger.Fields{"k": "v"}).Debug("debug")
			log.Info("info")
			log.Warn("warn")
			log.Error("error", errors.New("boom"))
		}).ToNot(Panic())
	})
})
