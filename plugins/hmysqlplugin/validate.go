package hmysqlplugin

import (
	"regexp"
	"sync"

	"gopkg.in/go-playground/validator.v9"

	"github.com/drharryhe/hasmysql/common/herrors"
)

var (
	identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	procNameRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*)?$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation(keywordValidTag, func(fl validator.FieldLevel) bool {
			return identifierRe.MatchString(fl.Field().String())
		})
	})
	return validate
}

func validateConf(conf *MysqlPlugin, desc string) *herrors.Error {
	if err := validatorInstance().Struct(conf); err != nil {
		return herrors.ErrDBConfiguration.New("%s", describeValidation(err)).D(desc)
	}
	return nil
}
