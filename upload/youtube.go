// Package upload publishes a finished run's video to YouTube. It is a
// separate operation from the pipeline: runs are produced offline and
// uploaded when the operator decides.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

// Metadata is what the upload publishes alongside the video file.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

const maxTitleLen = 100

// MetadataFromPlan derives upload metadata from the run's content
// plan. The hook makes a better title than the raw topic when it fits.
func MetadataFromPlan(plan *types.Plan, cfg config.UploadConfig) Metadata {
	title := strings.TrimSpace(plan.Hook)
	if title == "" || len(title) > maxTitleLen {
		title = strings.TrimSpace(plan.Topic)
	}

	var b strings.Builder
	if plan.Hook != "" {
		b.WriteString(plan.Hook + "\n\n")
	}
	for _, point := range plan.KeyPoints {
		b.WriteString("• " + point + "\n")
	}
	if plan.CallToAction != "" {
		b.WriteString("\n" + plan.CallToAction + "\n")
	}
	b.WriteString("\n#shorts")

	tags := append([]string{}, cfg.Tags...)
	if plan.Topic != "" {
		tags = append(tags, plan.Topic)
	}

	return Metadata{
		Title:       title,
		Description: b.String(),
		Tags:        tags,
	}
}

// Uploader publishes videos through the YouTube Data API.
type Uploader struct {
	cfg config.UploadConfig
}

// New creates an Uploader.
func New(cfg config.UploadConfig) *Uploader {
	return &Uploader{cfg: cfg}
}

// Run uploads videoFile and returns the video ID and watch URL.
func (u *Uploader) Run(ctx context.Context, videoFile string, meta Metadata) (string, string, error) {
	log.Println("[upload] Authenticating with YouTube API...")

	client, err := oauthClient(ctx)
	if err != nil {
		return "", "", &types.ServiceError{Service: "youtube", Err: err}
	}
	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", &types.ServiceError{Service: "youtube", Err: err}
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           u.cfg.CategoryID,
			DefaultLanguage:      u.cfg.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.cfg.Visibility,
			SelfDeclaredMadeForKids: u.cfg.MadeForKids,
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", &types.IOError{Op: "open", Path: videoFile, Err: err}
	}
	defer f.Close()

	log.Printf("[upload] Uploading: %q", meta.Title)
	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).NotifySubscribers(u.cfg.NotifySubscribers).Media(f).Do()
	if err != nil {
		return "", "", &types.ServiceError{Service: "youtube", Err: err}
	}

	url := "https://www.youtube.com/watch?v=" + uploaded.Id
	log.Printf("[upload] ✓ %s", url)
	return uploaded.Id, url, nil
}

// oauthClient builds an HTTP client from a pre-issued refresh token.
// There is no interactive consent flow; the token is provisioned once
// out of band.
func oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET and YOUTUBE_REFRESH_TOKEN must be set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token)), nil
}

// ReceiptName is the per-run record of a completed upload.
const ReceiptName = "upload_receipt.json"

// Receipt is written next to the uploaded video.
type Receipt struct {
	VideoID    string `json:"video_id"`
	VideoURL   string `json:"video_url"`
	Title      string `json:"title"`
	UploadedAt string `json:"uploaded_at"`
}

// WriteReceipt persists the upload outcome into the run directory.
func WriteReceipt(dir, videoID, videoURL, title string) error {
	rec := Receipt{
		VideoID:    videoID,
		VideoURL:   videoURL,
		Title:      title,
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, ReceiptName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &types.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
