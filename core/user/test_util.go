package user

import (
	"github.com/trezcool/safari/core"
)

// NewTestService returns a Service configured with core.NewTestConfig, for tests of other packages.
func NewTestService(repo Repository, mailSvc core.EmailService) Service {
	return newService(core.NewTestConfig(), repo, mailSvc, core.NopLogger())
}
