package dto_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pingwatch/connectivity-monitor/pkg/dto"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 500_000_000, time.UTC)

var _ = Describe("PingResponse", func() {
	It("builds a pong", func() {
		ping, err := dto.NewPing(now)

		Expect(err).NotTo(HaveOccurred())
		Expect(ping.Status).To(Equal(http.StatusOK))
		Expect(ping.Message).To(Equal("pong"))
		Expect(ping.Timestamp).To(Equal(now))
		Expect(ping.ServerTime).To(BeNumerically("~", 1714564800.5, 0.001))
	})

	It("serializes with snake_case keys", func() {
		ping, err := dto.NewPing(now)
		Expect(err).NotTo(HaveOccurred())

		body, err := json.Marshal(ping)
		Expect(err).NotTo(HaveOccurred())

		var fields map[string]any
		Expect(json.Unmarshal(body, &fields)).To(Succeed())
		Expect(fields).To(HaveKeyWithValue("status", BeNumerically("==", 200)))
		Expect(fields).To(HaveKeyWithValue("message", "pong"))
		Expect(fields).To(HaveKey("timestamp"))
		Expect(fields).To(HaveKey("server_time"))
	})

	It("rejects an empty message", func() {
		Expect(dto.PingResponse{Status: 200, Timestamp: now, ServerTime: 1}.Validate()).To(HaveOccurred())
	})
})

var _ = Describe("ProbeStatus", func() {
	DescribeTable("accepts the known statuses",
		func(status string) {
			probe, err := dto.NewProbeStatus(status, now)
			Expect(err).NotTo(HaveOccurred())
			Expect(probe.Status).To(Equal(status))
		},
		Entry("ready", dto.StatusReady),
		Entry("alive", dto.StatusAlive),
		Entry("ok", dto.StatusOK),
	)

	It("rejects other statuses", func() {
		_, err := dto.NewProbeStatus("sleepy", now)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Decode", func() {
	It("decodes a valid body", func() {
		var probe dto.ProbeStatus
		err := dto.DecodeBytes([]byte(`{"status":"ready","timestamp":"2024-05-01T12:00:00Z"}`), &probe)

		Expect(err).NotTo(HaveOccurred())
		Expect(probe.Status).To(Equal("ready"))
	})

	It("rejects unknown fields", func() {
		var probe dto.ProbeStatus
		err := dto.DecodeBytes([]byte(`{"status":"ready","timestamp":"2024-05-01T12:00:00Z","extra":1}`), &probe)

		Expect(err).To(MatchError(ContainSubstring("unknown field")))
	})

	It("rejects trailing data", func() {
		var probe dto.ProbeStatus
		err := dto.DecodeBytes([]byte(`{"status":"ready","timestamp":"2024-05-01T12:00:00Z"} {}`), &probe)

		Expect(err).To(HaveOccurred())
	})

	It("validates after decoding", func() {
		var ping dto.PingResponse
		err := dto.DecodeBytes([]byte(`{"status":200,"timestamp":"2024-05-01T12:00:00Z","server_time":1.5,"message":""}`), &ping)

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ErrorResponse", func() {
	It("writes itself as JSON with the status code", func() {
		rec := httptest.NewRecorder()

		dto.NewErr("internal server error", "req-1").Write(rec, http.StatusInternalServerError)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

		var body dto.ErrorResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Message).To(Equal("internal server error"))
		Expect(body.RequestID).To(Equal("req-1"))
	})
})
