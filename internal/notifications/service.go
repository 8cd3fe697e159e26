package notifications

import (
	"context"
	"fmt"
	"log"
	"sync"

	"kerya/internal/bookings"
	"kerya/internal/shared/config"
	"kerya/internal/tickets"
)

// Service publishes booking lifecycle notifications to Kafka and runs the
// email workers that consume them. It satisfies both bookings.Notifier and
// tickets.Notifier.
type Service interface {
	bookings.Notifier
	tickets.Notifier

	Start(ctx context.Context) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type service struct {
	producer NotificationProducer
	consumer NotificationConsumer

	numWorkers int

	isRunning bool
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewService wires the Kafka producer, consumer group and email transport
// from application configuration.
func NewService(cfg *config.Config) (Service, error) {
	var emailService EmailService
	if cfg.Email.SMTPHost != "" {
		smtpService, err := NewSMTPEmailService(&SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  "Kerya",
			UseTLS:    true,
		})
		if err != nil {
			return nil, err
		}
		emailService = smtpService
	} else {
		emailService = NewMockEmailService()
	}

	producerConfig := DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.NotificationTopic = cfg.Kafka.NotificationTopic

	producer, err := NewKafkaNotificationProducer(producerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification producer: %w", err)
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroup

	consumer, err := NewKafkaNotificationConsumer(consumerConfig, emailService)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification consumer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &service{
		producer:   producer,
		consumer:   consumer,
		numWorkers: 3,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("notification service is already running")
	}

	err := s.consumer.StartConsumers(s.ctx, s.numWorkers)
	if err != nil {
		return fmt.Errorf("failed to start consumers: %w", err)
	}

	s.isRunning = true
	log.Printf("✅ Notification service started")

	return nil
}

func (s *service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return fmt.Errorf("notification service is not running")
	}

	s.cancel()

	if err := s.consumer.Stop(); err != nil {
		log.Printf("Error stopping consumer: %v", err)
	}

	if err := s.producer.Close(); err != nil {
		log.Printf("Error closing producer: %v", err)
	}

	s.isRunning = false
	log.Printf("✅ Notification service stopped")

	return nil
}

func (s *service) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	isRunning := s.isRunning
	s.mu.RUnlock()

	if !isRunning {
		return fmt.Errorf("notification service is not running")
	}

	if err := s.producer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("producer health check failed: %w", err)
	}

	return s.consumer.HealthCheck(ctx)
}

// BookingCreated notifies the guest that their stay request was recorded. A
// hotel booking is auto confirmed, so it gets the accepted notification
// straight away.
func (s *service) BookingCreated(ctx context.Context, booking *bookings.Booking) {
	notType := NotificationTypeBookingRequested
	if booking.Status == bookings.StatusAccepted {
		notType = NotificationTypeBookingAccepted
	}
	s.publishStayNotification(ctx, booking, notType)
}

// BookingTransitioned notifies the guest about a host decision or a
// cancellation. Check-in/out and no-show changes stay internal.
func (s *service) BookingTransitioned(ctx context.Context, booking *bookings.Booking, transition bookings.Transition) {
	var notType NotificationType
	switch transition {
	case bookings.TransitionAccept:
		notType = NotificationTypeBookingAccepted
	case bookings.TransitionDecline:
		notType = NotificationTypeBookingDeclined
	case bookings.TransitionCancel:
		notType = NotificationTypeBookingCancelled
	default:
		return
	}
	s.publishStayNotification(ctx, booking, notType)
}

func (s *service) publishStayNotification(ctx context.Context, booking *bookings.Booking, notType NotificationType) {
	if booking.Guest == nil {
		log.Printf("Skipping %s notification: booking %s has no guest loaded", notType, booking.ID)
		return
	}

	data := map[string]interface{}{
		"start_date":  booking.StartDate.Format("2006-01-02"),
		"end_date":    booking.EndDate.Format("2006-01-02"),
		"nights":      booking.Nights,
		"price_total": booking.PriceTotal.String(),
		"currency":    booking.Currency,
	}
	if booking.Listing != nil {
		data["listing_title"] = booking.Listing.Title
	}

	notification := NewNotificationBuilder().
		WithType(notType).
		WithRecipient(booking.GuestID, booking.Guest.Email, booking.Guest.FirstName).
		WithListingContext(booking.ListingID).
		WithBookingContext(booking.ID).
		WithTemplateData(data).
		WithSubject(generateSubject(notType, data)).
		Build()

	if err := s.producer.PublishNotification(ctx, notification); err != nil {
		log.Printf("Failed to publish %s notification for booking %s: %v", notType, booking.ID, err)
	}
}

// EventBookingCreated notifies the purchaser that their ticket order is
// pending payment.
func (s *service) EventBookingCreated(ctx context.Context, booking *tickets.EventBooking) {
	s.publishOrderNotification(ctx, booking, NotificationTypeOrderCreated)
}

// EventBookingConfirmed notifies the purchaser that tickets were issued.
func (s *service) EventBookingConfirmed(ctx context.Context, booking *tickets.EventBooking) {
	s.publishOrderNotification(ctx, booking, NotificationTypeOrderConfirmed)
}

// EventBookingCancelled notifies the purchaser that their order was cancelled.
func (s *service) EventBookingCancelled(ctx context.Context, booking *tickets.EventBooking) {
	s.publishOrderNotification(ctx, booking, NotificationTypeOrderCancelled)
}

func (s *service) publishOrderNotification(ctx context.Context, booking *tickets.EventBooking, notType NotificationType) {
	data := map[string]interface{}{
		"booking_reference": booking.BookingReference,
		"total_tickets":     booking.TotalTickets,
		"total_amount":      booking.TotalAmount.String(),
		"currency":          booking.Currency,
	}
	if booking.Event != nil {
		data["event_title"] = booking.Event.Title
	}

	notification := NewNotificationBuilder().
		WithType(notType).
		WithRecipient(booking.UserID, booking.CustomerEmail, booking.CustomerName).
		WithListingContext(booking.EventID).
		WithBookingContext(booking.ID).
		WithTemplateData(data).
		WithSubject(generateSubject(notType, data)).
		Build()

	if err := s.producer.PublishNotification(ctx, notification); err != nil {
		log.Printf("Failed to publish %s notification for order %s: %v", notType, booking.BookingReference, err)
	}
}

// TicketUsed notifies the ticket holder that their ticket was scanned.
func (s *service) TicketUsed(ctx context.Context, ticket *tickets.EventTicket) {
	if ticket.Booking == nil {
		log.Printf("Skipping ticket used notification: ticket %s has no booking loaded", ticket.TicketNumber)
		return
	}

	data := map[string]interface{}{
		"ticket_number":     ticket.TicketNumber,
		"booking_reference": ticket.Booking.BookingReference,
	}
	if ticket.Booking.Event != nil {
		data["event_title"] = ticket.Booking.Event.Title
	}

	notification := NewNotificationBuilder().
		WithType(NotificationTypeTicketUsed).
		WithRecipient(ticket.Booking.UserID, ticket.Booking.CustomerEmail, ticket.HolderName).
		WithBookingContext(ticket.BookingID).
		WithTemplateData(data).
		WithSubject(generateSubject(NotificationTypeTicketUsed, data)).
		Build()

	if err := s.producer.PublishNotification(ctx, notification); err != nil {
		log.Printf("Failed to publish ticket used notification for %s: %v", ticket.TicketNumber, err)
	}
}

// generateSubject generates appropriate subjects for different notification types
func generateSubject(notType NotificationType, data map[string]interface{}) string {
	switch notType {
	case NotificationTypeBookingRequested:
		if title, ok := data["listing_title"]; ok {
			return fmt.Sprintf("Booking request sent for %s", title)
		}
		return "Your booking request was sent"

	case NotificationTypeBookingAccepted:
		if title, ok := data["listing_title"]; ok {
			return fmt.Sprintf("✅ Booking confirmed for %s", title)
		}
		return "✅ Your booking is confirmed"

	case NotificationTypeBookingDeclined:
		if title, ok := data["listing_title"]; ok {
			return fmt.Sprintf("Booking request declined for %s", title)
		}
		return "Your booking request was declined"

	case NotificationTypeBookingCancelled:
		if title, ok := data["listing_title"]; ok {
			return fmt.Sprintf("Booking cancelled for %s", title)
		}
		return "Your booking has been cancelled"

	case NotificationTypeOrderCreated:
		return fmt.Sprintf("Ticket order %v received", data["booking_reference"])

	case NotificationTypeOrderConfirmed:
		if title, ok := data["event_title"]; ok {
			return fmt.Sprintf("🎟️ Tickets confirmed for %s", title)
		}
		return "🎟️ Your tickets are confirmed"

	case NotificationTypeOrderCancelled:
		return fmt.Sprintf("Ticket order %v cancelled", data["booking_reference"])

	case NotificationTypeTicketUsed:
		return fmt.Sprintf("Ticket %v checked in", data["ticket_number"])

	default:
		return "Notification from Kerya"
	}
}
