// smoke 对运行中的服务做一次端到端检查
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const sampleText = "भारत दक्षिण एशिया में स्थित एक विशाल देश है। इसकी राजधानी नई दिल्ली है और यहाँ कई भाषाएँ बोली जाती हैं। " +
	"हिंदी देश की सबसे अधिक बोली जाने वाली भाषा है।"

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Service base address")
	pdfPath := flag.String("pdf", "", "PDF file to summarize")
	articleURL := flag.String("url", "", "Article URL to summarize")
	flag.Parse()

	client := &http.Client{Timeout: 3 * time.Minute}
	failed := false

	// 1. 健康检查
	fmt.Println("\n=== Health ===")
	if err := get(client, *addr+"/api/health"); err != nil {
		fmt.Printf("Error: %v\n", err)
		failed = true
	}

	// 2. 文本摘要
	fmt.Println("\n=== Summarize text ===")
	if err := postJSON(client, *addr+"/api/summaries", map[string]string{"text": sampleText}); err != nil {
		fmt.Printf("Error: %v\n", err)
		failed = true
	}

	// 3. PDF摘要
	if *pdfPath != "" {
		fmt.Println("\n=== Summarize PDF ===")
		if err := uploadPDF(client, *addr+"/api/summaries/pdf", *pdfPath); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}

	// 4. 网页文章摘要
	if *articleURL != "" {
		fmt.Println("\n=== Summarize URL ===")
		if err := postJSON(client, *addr+"/api/summaries/url", map[string]string{"url": *articleURL}); err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func get(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func postJSON(client *http.Client, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	return printResponse(resp)
}

func uploadPDF(client *http.Client, url, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("error creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("error copying file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return printResponse(resp)
}

// printResponse 打印响应，非200状态视为失败
func printResponse(resp *http.Response) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}
	fmt.Printf("Status: %d\nTrace: %s\nResponse: %s\n", resp.StatusCode, resp.Header.Get("X-Trace-ID"), body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
