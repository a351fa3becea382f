package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"

	"golang.org/x/image/draw"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func fetchBytes(rawURL string) []byte {
	resp, err := http.Get(rawURL)
	if err != nil {
		fmt.Printf("❌ [Media] Fetch failed: %v\n", err)
		return nil
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data
}

func sendVideo(client *whatsmeow.Client, v *events.Message, videoURL, caption string) {
	data := fetchBytes(videoURL)
	if len(data) == 0 {
		return
	}
	up, err := client.Upload(context.Background(), data, whatsmeow.MediaVideo)
	if err != nil {
		return
	}
	client.SendMessage(context.Background(), v.Info.Chat, &waProto.Message{
		VideoMessage: &waProto.VideoMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			Mimetype:      proto.String("video/mp4"),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			FileLength:    proto.Uint64(uint64(len(data))),
			Caption:       proto.String(caption),
			ContextInfo: &waProto.ContextInfo{
				StanzaID:      proto.String(v.Info.ID),
				Participant:   proto.String(v.Info.Sender.String()),
				QuotedMessage: v.Message,
			},
		},
	})
}

func sendImage(client *whatsmeow.Client, v *events.Message, imageURL, caption string) {
	data := fetchBytes(imageURL)
	if len(data) == 0 {
		return
	}
	up, err := client.Upload(context.Background(), data, whatsmeow.MediaImage)
	if err != nil {
		return
	}
	client.SendMessage(context.Background(), v.Info.Chat, &waProto.Message{
		ImageMessage: &waProto.ImageMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			Mimetype:      proto.String("image/jpeg"),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			FileLength:    proto.Uint64(uint64(len(data))),
			Caption:       proto.String(caption),
			JPEGThumbnail: makeThumbnail(data),
			ContextInfo: &waProto.ContextInfo{
				StanzaID:      proto.String(v.Info.ID),
				Participant:   proto.String(v.Info.Sender.String()),
				QuotedMessage: v.Message,
			},
		},
	})
}

func sendDocument(client *whatsmeow.Client, v *events.Message, docURL, name, mimeType string) {
	data := fetchBytes(docURL)
	if len(data) == 0 {
		return
	}
	sendDocumentBytes(client, v, data, name, mimeType, "✅ *Successfully Downloaded*")
}

// sendDocumentFile ships a file from disk as a document. Parts of a
// split transfer go through here with their wire name, so the receiver
// saves them ready for reassembly.
func sendDocumentFile(client *whatsmeow.Client, v *events.Message, path, name, mimeType, caption string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ [Media] Read %s failed: %v\n", path, err)
		return false
	}
	return sendDocumentBytes(client, v, data, name, mimeType, caption)
}

func sendDocumentBytes(client *whatsmeow.Client, v *events.Message, data []byte, name, mimeType, caption string) bool {
	up, err := client.Upload(context.Background(), data, whatsmeow.MediaDocument)
	if err != nil {
		fmt.Printf("❌ [Media] Upload failed: %v\n", err)
		return false
	}
	_, err = client.SendMessage(context.Background(), v.Info.Chat, &waProto.Message{
		DocumentMessage: &waProto.DocumentMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			Mimetype:      proto.String(mimeType),
			FileName:      proto.String(name),
			Title:         proto.String(name),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			FileLength:    proto.Uint64(uint64(len(data))),
			Caption:       proto.String(caption),
			ContextInfo: &waProto.ContextInfo{
				StanzaID:      proto.String(v.Info.ID),
				Participant:   proto.String(v.Info.Sender.String()),
				QuotedMessage: v.Message,
			},
		},
	})
	if err != nil {
		fmt.Printf("❌ [Media] Send failed: %v\n", err)
		return false
	}
	return true
}

// makeThumbnail downscales an image to a small JPEG preview. Returns
// nil when the input is not a decodable image.
func makeThumbnail(input []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(input))
	if err != nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	const max = 96
	scale := float64(max) / float64(w)
	if s := float64(max) / float64(h); s < scale {
		scale = s
	}
	if scale > 1 {
		scale = 1
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 70}); err != nil {
		return nil
	}
	return buf.Bytes()
}
