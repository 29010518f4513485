package otmpsi_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOTMPSI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OT-MPSI Protocol Suite")
}
