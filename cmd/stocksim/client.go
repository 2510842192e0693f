package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var httpClient = &http.Client{Timeout: 15 * time.Second}

func getJSON(route string, query map[string]string) (string, error) {
	rpcserver, err := getRPCServer()
	if err != nil {
		return "", err
	}

	params := url.Values{}
	for key, value := range query {
		params.Set(key, value)
	}
	endpoint := fmt.Sprintf("http://%s%s", rpcserver, route)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	resp, err := httpClient.Get(endpoint)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func postJSON(route string, body interface{}) (string, error) {
	rpcserver, err := getRPCServer()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	resp, err := httpClient.Post(
		fmt.Sprintf("http://%s%s", rpcserver, route),
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func readResponse(resp *http.Response) (string, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("daemon answered %d: %s", resp.StatusCode, string(raw))
	}
	return string(raw), nil
}

func printRespJSON(raw string) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "\t"); err != nil {
		fmt.Println(raw)
		return
	}
	fmt.Println(buf.String())
}
