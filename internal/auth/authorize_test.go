package auth

import (
	"context"

	"github.com/frahmantamala/event-management/internal/permission"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("HasPermission", func() {
	ginkgo.It("should be false for anonymous callers", func() {
		gomega.Expect(HasPermission(nil, permission.EventCreate)).To(gomega.BeFalse())
	})

	ginkgo.It("should be false for capabilities outside the catalog", func() {
		id := NewIdentity(1, "a@example.com", "superAdmin", permission.Catalog())
		gomega.Expect(HasPermission(id, "event.launch")).To(gomega.BeFalse())
	})

	ginkgo.It("should only consult the materialized set, not the role", func() {
		demoted := NewIdentity(1, "a@example.com", "admin", []string{permission.EventRSVP})
		gomega.Expect(HasPermission(demoted, permission.EventDeleteAll)).To(gomega.BeFalse())
		gomega.Expect(HasPermission(demoted, permission.EventRSVP)).To(gomega.BeTrue())
	})
})

var _ = ginkgo.Describe("CanActOnEvent", func() {
	const ownerID = int64(7)

	ginkgo.DescribeTable("update decisions",
		func(userID int64, perms []string, expected bool) {
			id := NewIdentity(userID, "u@example.com", "user", perms)
			gomega.Expect(CanActOnEvent(id, ownerID, "event.update")).To(gomega.Equal(expected))
		},
		ginkgo.Entry("owner with .own", ownerID, []string{permission.EventUpdateOwn}, true),
		ginkgo.Entry("owner without .own", ownerID, []string{permission.EventCreate}, false),
		ginkgo.Entry("non-owner with .own", int64(8), []string{permission.EventUpdateOwn}, false),
		ginkgo.Entry("non-owner with .all", int64(8), []string{permission.EventUpdateAll}, true),
		ginkgo.Entry("owner with .all only", ownerID, []string{permission.EventUpdateAll}, true),
		ginkgo.Entry("delete grant does not cover update", ownerID, []string{permission.EventDeleteOwn, permission.EventDeleteAll}, false),
	)

	ginkgo.It("should deny anonymous callers", func() {
		gomega.Expect(CanActOnEvent(nil, ownerID, "event.delete")).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("Identity context", func() {
	ginkgo.It("should round-trip through the request context", func() {
		id := NewIdentity(3, "c@example.com", "user", nil)
		ctx := WithIdentity(context.Background(), id)

		got, ok := IdentityFromContext(ctx)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(got).To(gomega.BeIdenticalTo(id))
	})

	ginkgo.It("should report anonymous when absent", func() {
		_, ok := IdentityFromContext(context.Background())
		gomega.Expect(ok).To(gomega.BeFalse())

		_, ok = IdentityFromContext(WithIdentity(context.Background(), nil))
		gomega.Expect(ok).To(gomega.BeFalse())
	})
})
