package notification_test

import (
	"context"
	"encoding/json"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/event-management/internal/notification"
	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/frahmantamala/event-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
)

var _ = Describe("RedisBroadcaster", func() {
	var (
		mr          *miniredis.Miniredis
		client      *redis.Client
		broadcaster *notification.RedisBroadcaster
		reg         *prometheus.Registry
		ctx         context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		reg = prometheus.NewRegistry()
		broadcaster = notification.NewRedisBroadcaster(client, "notifications", observability.NewMetrics(reg))
	})

	AfterEach(func() {
		_ = client.Close()
		mr.Close()
	})

	It("should name channels per user", func() {
		Expect(broadcaster.Channel(42)).To(Equal("notifications:42"))
	})

	It("should publish JSON on the user's channel", func() {
		sub := client.Subscribe(ctx, "notifications:7")
		defer sub.Close()
		_, err := sub.Receive(ctx)
		Expect(err).NotTo(HaveOccurred())

		msg := notification.Message{
			Kind:         notification.MessageCreated,
			UserID:       7,
			Notification: &notification.Notification{ID: 1, UserID: 7, Message: "hi", Status: notification.StatusUnread},
		}
		Expect(broadcaster.Broadcast(ctx, msg)).To(Succeed())

		var received *redis.Message
		Eventually(sub.Channel()).Should(Receive(&received))
		Expect(received.Channel).To(Equal("notifications:7"))

		var decoded notification.Message
		Expect(json.Unmarshal([]byte(received.Payload), &decoded)).To(Succeed())
		Expect(decoded.Kind).To(Equal(notification.MessageCreated))
		Expect(decoded.Notification.Message).To(Equal("hi"))
	})

	It("should return an error and count the failure when Redis is gone", func() {
		mr.Close()

		err := broadcaster.Broadcast(ctx, notification.Message{Kind: notification.MessageRead, UserID: 7})
		Expect(err).To(HaveOccurred())

		count, gatherErr := testutil.GatherAndCount(reg, "event_management_notification_broadcasts_total")
		Expect(gatherErr).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})

	It("should deliver messages to a pattern subscriber", func() {
		subCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		received := make(chan notification.Message, 1)
		done := make(chan error, 1)
		go func() {
			done <- broadcaster.Subscribe(subCtx, logger.Discard(), func(m notification.Message) {
				received <- m
			})
		}()

		Eventually(func() int {
			return mr.PubSubNumPat()
		}).Should(BeNumerically(">", 0))

		Expect(broadcaster.Broadcast(ctx, notification.Message{Kind: notification.MessageReadAll, UserID: 9})).To(Succeed())

		var m notification.Message
		Eventually(received, time.Second).Should(Receive(&m))
		Expect(m.UserID).To(Equal(int64(9)))
		Expect(m.Kind).To(Equal(notification.MessageReadAll))

		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("should make service operations succeed while Redis is down", func() {
		mr.Close()
		service := notification.NewService(newMockRepository(), broadcaster, logger.Discard())

		n, err := service.Notify(ctx, 7, notification.TypeEventCreated, "still stored", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(n.ID).To(BeNumerically(">", 0))
	})
})
