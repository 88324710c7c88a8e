/*
Copyright 2024 Inlet Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inlethq/inlet/config"
	"github.com/inlethq/inlet/internal/request"
)

// SlackNotification sends an error message to the configured Slack webhook.
func SlackNotification(err error) error {
	data := json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{
				"type": "header",
				"text": {
					"type": "plain_text",
					"text": "Error From Inlet 🐞",
					"emoji": true
				}
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": "*Error:*\n%v"
					},
					{
						"type": "mrkdwn",
						"text": "*Time:*\n%v"
					}
				]
			}
		]
	}`, err.Error(), time.Now().Format(time.RFC822)))

	conf, confErr := config.Fetch()
	if confErr != nil {
		return confErr
	}
	if conf.Notification.Slack.WebhookUrl == "" {
		return nil
	}

	payload, jsonErr := request.ToJsonReq(&data)
	if jsonErr != nil {
		return jsonErr
	}

	req, reqErr := http.NewRequest("POST", conf.Notification.Slack.WebhookUrl, payload)
	if reqErr != nil {
		return reqErr
	}

	resp, callErr := request.Call(req, nil)
	if callErr != nil {
		return callErr
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyError logs the error and forwards it to Slack when a webhook is
// configured. Notification failures are logged, never propagated; an
// unreachable webhook must not take an import down with it.
func NotifyError(err error) {
	logrus.Error(err)
	if slackErr := SlackNotification(err); slackErr != nil {
		logrus.Warnf("sending slack notification: %v", slackErr)
	}
}
