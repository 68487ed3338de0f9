package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/secureport/internal/contactform"
	"github.com/secureport/internal/models"

	"github.com/spf13/cobra"
)

// errSubmitFailed 提交未成功（字段错误或网关拒绝）
var errSubmitFailed = errors.New("submission not accepted")

// replyGateway 保留最近一次网关响应体，用于输出失败原因
type replyGateway struct {
	*contactform.HTTPGateway
	last contactform.GatewayReply
}

func (g *replyGateway) Send(ctx context.Context, submission models.ContactSubmission) (int, error) {
	status, reply, err := g.SendWithReply(ctx, submission)
	g.last = reply
	return status, err
}

func printFieldErrors(out io.Writer, errs map[string]string) {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s: %s\n", name, errs[name])
	}
}

func newSubmitCmd() *cobra.Command {
	var (
		url     string
		fields  contactform.Fields
		token   string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a contact message",
		Long:  `Validate the message locally and POST it to the contact gateway. Nothing is sent when validation fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway := &replyGateway{HTTPGateway: contactform.NewHTTPGateway(url, timeout, nil)}
			controller := contactform.New(gateway, nil)
			snap := controller.Submit(cmd.Context(), fields, token)

			out := cmd.OutOrStdout()
			switch snap.State {
			case contactform.StateSuccess:
				fmt.Fprintln(out, snap.Message)
				return nil
			case contactform.StateInvalid:
				printFieldErrors(out, snap.Errors)
			default:
				fmt.Fprintln(out, snap.Message)
				if snap.StatusCode != 0 {
					fmt.Fprintf(out, "gateway status: %d\n", snap.StatusCode)
				}
				if gateway.last.Error != "" {
					fmt.Fprintf(out, "gateway error: %s\n", gateway.last.Error)
				}
				printFieldErrors(out, gateway.last.Fields)
			}
			return errSubmitFailed
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:8080/api/contact", "Contact gateway URL")
	cmd.Flags().StringVar(&fields.Name, "name", "", "Sender name")
	cmd.Flags().StringVar(&fields.Email, "email", "", "Sender email")
	cmd.Flags().StringVar(&fields.Comments, "comments", "", "Message body")
	cmd.Flags().StringVar(&token, "token", "", "CAPTCHA token (image provider: <captcha_id>:<code>)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Gateway request timeout")
	return cmd
}
