package common_test

import (
	"bytes"
	"os"
	"portal/common"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

func TestConfigureLogger(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should use json formatter and append default fields", func(t *testing.T) {
		logger := logrus.New()
		common.ConfigureLogger(logger, "JSON", "debug")
		Expect(logger.Formatter).To(BeAssignableToTypeOf(&logrus.JSONFormatter{}))
		Expect(logger.GetLevel()).To(Equal(logrus.DebugLevel))

		buf := bytes.Buffer{}
		logger.Out = &buf
		logger.Info("hello")
		Expect(buf.String()).To(ContainSubstring(`"serviceName":"portal"`))
		Expect(buf.String()).To(ContainSubstring(`"msg":"hello"`))
	})

	t.Run("should fallback to text formatter and keep level when level is invalid", func(t *testing.T) {
		logger := logrus.New()
		common.ConfigureLogger(logger, "", "not-a-level")
		Expect(logger.Formatter).To(BeAssignableToTypeOf(&logrus.TextFormatter{}))
		Expect(logger.GetLevel()).To(Equal(logrus.InfoLevel))
	})
}

func TestGetServiceName(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be overridable by environment", func(t *testing.T) {
		Expect(common.GetServiceName()).To(Equal("portal"))
		Expect(os.Setenv("SERVICE_NAME", "portal-test")).To(BeNil())
		defer os.Unsetenv("SERVICE_NAME")
		Expect(common.GetServiceName()).To(Equal("portal-test"))
	})
}
