package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"

	echoapi "github.com/bobur6/professor-ai-helper/apps/api/echo"
	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/classes"
	"github.com/bobur6/professor-ai-helper/core/documents"
	"github.com/bobur6/professor-ai-helper/core/user"
	logsvc "github.com/bobur6/professor-ai-helper/services/logger"
	inmemdb "github.com/bobur6/professor-ai-helper/storage/database/inmem"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// newDB opens the in-memory store, seeded with the demo account in debug mode.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *inmemdb.DB {
	db := inmemdb.Open()
	if conf.Debug {
		usr, cr, err := inmemdb.SeedDemo(db)
		if err != nil {
			loggerParam.Logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
		}
		loggerParam.Logger.Info("demo data seeded", core.Fields{
			"email": usr.Email, "password": inmemdb.DemoPassword, "class_id": cr.ID,
		})
	}
	return db
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

func newServerDeps(
	conf *core.Config,
	logger core.Logger,
	validator *core.Validator,
	usrSvc *user.Service,
	classSvc *classes.Service,
	docSvc *documents.Service,
	registry *prometheus.Registry,
) *echoapi.Deps {
	return &echoapi.Deps{
		Conf:      conf,
		Logger:    logger,
		Validator: validator,
		UserSvc:   usrSvc,
		ClassSvc:  classSvc,
		DocSvc:    docSvc,
		Registry:  registry,
	}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(inmemdb.NewUserRepository))
	must(c.Provide(inmemdb.NewClassRepository))
	must(c.Provide(inmemdb.NewDocumentRepository))
	must(c.Provide(core.NewValidator))
	must(c.Provide(user.NewService))
	must(c.Provide(classes.NewService))
	must(c.Provide(documents.NewService))
	must(c.Provide(newRegistry))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
