package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"bookwise/internal/directory"
	"bookwise/internal/logger"
	"bookwise/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	ChannelEmail = "email"
	ChannelSms   = "sms"

	queueKey  = "notifications"
	failedKey = "notifications:failed"

	maxTries = 3
)

type Job struct {
	Channel string    `json:"channel"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Deliverer pushes one job out of the process. One per channel.
type Deliverer interface {
	Deliver(job Job) error
}

type Service struct {
	redis      *redis.Client
	deliverers map[string]Deliverer
}

func New(redisAddr string, deliverers map[string]Deliverer) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		deliverers: deliverers,
	}
}

func (s *Service) Queue(ctx context.Context, channel, to, name, subject, body string) error {
	job := Job{
		Channel: channel,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue %s notification to %s: %v", channel, to, err)
		return err
	}

	metrics.RecordNotificationQueued(channel)
	logger.Infof("Notification queued: %s to %s via %s", subject, to, channel)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Delivering %s notification to %s (attempt %d)", job.Channel, job.To, job.Tries)
	if err := s.deliverNow(job); err != nil {
		logger.Errorf("Failed to deliver notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Notification to %s failed after %d attempts", job.To, maxTries)
			s.saveFailed(job, err)
		}
		return
	}

	logger.Infof("Notification delivered to %s", job.To)
}

func (s *Service) deliverNow(job Job) error {
	deliverer, ok := s.deliverers[job.Channel]
	if !ok {
		return fmt.Errorf("no deliverer for channel %q", job.Channel)
	}
	return deliverer.Deliver(job)
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, data)
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) WaitlistSpotAvailable(ctx context.Context, user *directory.User, serviceName string, expiresAt time.Time, byEmail, bySms bool) error {
	subject := "A spot opened up - " + serviceName
	body := fmt.Sprintf(`Hi %s,

A spot opened up for %s!

Claim it before %s or it goes to the next person in line.

- BookWise Team`, user.FullName(), serviceName, expiresAt.Format("Jan 2, 2006 at 3:04 PM"))

	if byEmail && user.Email != "" {
		if err := s.Queue(ctx, ChannelEmail, user.Email, user.FullName(), subject, body); err != nil {
			return err
		}
	}
	if bySms && user.Phone != "" {
		if err := s.Queue(ctx, ChannelSms, user.Phone, user.FullName(), subject, body); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) WaitlistPromoted(ctx context.Context, user *directory.User, serviceName string, start time.Time) error {
	subject := "You're booked - " + serviceName
	body := fmt.Sprintf(`Hi %s,

You were at the front of the waitlist and we booked you in!

Service: %s
Time: %s

- BookWise Team`, user.FullName(), serviceName, start.Format("Jan 2, 2006 at 3:04 PM"))

	if user.Email == "" {
		return nil
	}
	return s.Queue(ctx, ChannelEmail, user.Email, user.FullName(), subject, body)
}

func (s *Service) BookingCancelled(ctx context.Context, user *directory.User, serviceName string, start time.Time) error {
	subject := "Booking Cancelled - " + serviceName
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled:

Service: %s
Time: %s

If this wasn't you, contact the front desk.

- BookWise Team`, user.FullName(), serviceName, start.Format("Jan 2, 2006 at 3:04 PM"))

	if user.Email == "" {
		return nil
	}
	return s.Queue(ctx, ChannelEmail, user.Email, user.FullName(), subject, body)
}

// SMTPDeliverer sends email jobs through a plain SMTP relay.
type SMTPDeliverer struct {
	From     string
	FromName string
	Host     string
	Port     string
	User     string
	Pass     string
}

func (d *SMTPDeliverer) Deliver(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", d.FromName, d.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if d.User != "" && d.Pass != "" {
		auth = smtp.PlainAuth("", d.User, d.Pass, d.Host)
	}

	addr := d.Host + ":" + d.Port
	return smtp.SendMail(addr, auth, d.From, []string{job.To}, []byte(message))
}

// LogDeliverer stands in for channels without a real gateway yet.
// TODO: replace with a Twilio-backed deliverer once the account exists.
type LogDeliverer struct {
	Channel string
}

func (d *LogDeliverer) Deliver(job Job) error {
	logger.Infof("[%s] to %s: %s", d.Channel, job.To, job.Subject)
	return nil
}
