package cmd

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const minimalConfig = `
database:
  source: postgres://localhost:5432/events
security:
  jwt_access_secret: 0123456789abcdef0123456789abcdef
  jwt_refresh_secret: fedcba9876543210fedcba9876543210
`

var _ = Describe("loadConfig", func() {
	var dir string

	writeConfig := func(body string) {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600)).To(Succeed())
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		GinkgoT().Setenv("APP_ENV", "")
		GinkgoT().Setenv("DOCKER_ENV", "")
	})

	It("should fill defaults around a sparse config file", func() {
		writeConfig(minimalConfig)

		cfg, err := loadConfig(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(15 * time.Minute))
		Expect(cfg.Notification.ChannelPrefix).To(Equal("notifications"))
		Expect(cfg.RateLimit.RSVPPerMinute).To(Equal(30))
		Expect(cfg.OIDC.Enabled()).To(BeFalse())
	})

	It("should let ENV_ prefixed variables override the file", func() {
		writeConfig(minimalConfig)
		GinkgoT().Setenv("ENV_HTTP_SERVER_PORT", "9090")

		cfg, err := loadConfig(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
	})

	It("should reject short JWT secrets", func() {
		writeConfig(`
database:
  source: postgres://localhost:5432/events
security:
  jwt_access_secret: short
  jwt_refresh_secret: short
`)

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("JWTAccessSecret")))
	})

	It("should fail without a config file", func() {
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("error reading config")))
	})

	It("should read plain environment variables in production", func() {
		GinkgoT().Setenv("APP_ENV", "production")
		GinkgoT().Setenv("DATABASE_SOURCE", "postgres://db:5432/events")
		GinkgoT().Setenv("SECURITY_JWT_ACCESS_SECRET", "0123456789abcdef0123456789abcdef")
		GinkgoT().Setenv("SECURITY_JWT_REFRESH_SECRET", "fedcba9876543210fedcba9876543210")
		GinkgoT().Setenv("RATE_LIMIT_RSVP_PER_MINUTE", "5")

		cfg, err := loadConfig(dir)

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.IsProduction()).To(BeTrue())
		Expect(cfg.Database.Source).To(Equal("postgres://db:5432/events"))
		Expect(cfg.RateLimit.RSVPPerMinute).To(Equal(5))
	})
})

var _ = Describe("migrationCommand", func() {
	AfterEach(func() {
		migrateRollback, migrateStatus = false, false
	})

	It("should migrate up by default", func() {
		Expect(migrationCommand()).To(Equal("up"))
	})

	It("should roll back one version with --rollback", func() {
		migrateRollback = true
		Expect(migrationCommand()).To(Equal("down"))
	})

	It("should prefer status over rollback", func() {
		migrateRollback, migrateStatus = true, true
		Expect(migrationCommand()).To(Equal("status"))
	})
})

var _ = Describe("category command", func() {
	It("should be registered with enable and disable", func() {
		found, _, err := rootCmd.Find([]string{"category", "disable"})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeIdenticalTo(categoryDisableCmd))

		found, _, err = rootCmd.Find([]string{"category", "enable"})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeIdenticalTo(categoryEnableCmd))
	})

	It("should require exactly one category name", func() {
		Expect(categoryDisableCmd.Args(categoryDisableCmd, nil)).To(HaveOccurred())
		Expect(categoryDisableCmd.Args(categoryDisableCmd, []string{"Workshop", "Social"})).To(HaveOccurred())
		Expect(categoryDisableCmd.Args(categoryDisableCmd, []string{"Workshop"})).To(Succeed())
	})
})
