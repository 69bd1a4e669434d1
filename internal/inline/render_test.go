package inline

import (
	"reflect"
	"testing"

	"github.com/bryanpdl/briefly/internal/brief"
)

func TestRender_LinkTakesPrecedenceOverImage(t *testing.T) {
	nodes := Render("See [photo](https://x.test/a.png) for reference")
	want := []Node{
		{Kind: KindText, Text: "See "},
		{Kind: KindLink, Label: "photo", URL: "https://x.test/a.png"},
		{Kind: KindText, Text: " for reference"},
	}
	if !reflect.DeepEqual(nodes, want) {
		t.Errorf("nodes = %#v", nodes)
	}
	if len(Images(nodes)) != 0 {
		t.Error("link target must not become an image")
	}
}

func TestRender_BareImage(t *testing.T) {
	nodes := Render("Inspired by https://x.test/b.jpg and also https://x.test/c.com")
	want := []Node{
		{Kind: KindText, Text: "Inspired by "},
		{Kind: KindImage, URL: "https://x.test/b.jpg"},
		{Kind: KindText, Text: " and also https://x.test/c.com"},
	}
	if !reflect.DeepEqual(nodes, want) {
		t.Errorf("nodes = %#v", nodes)
	}
}

func TestRender_ImageExtensionsCaseInsensitive(t *testing.T) {
	content := "a https://x.test/1.JPEG b https://x.test/2.Png c https://x.test/3.gif d https://x.test/4.bmp"
	got := Images(Render(content))
	want := []string{
		"https://x.test/1.JPEG",
		"https://x.test/2.Png",
		"https://x.test/3.gif",
		"https://x.test/4.bmp",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("images = %v", got)
	}
}

func TestRender_ImageFollowedByPunctuation(t *testing.T) {
	nodes := Render("Mood board: https://x.test/m.png.")
	if len(nodes) != 3 {
		t.Fatalf("nodes = %#v", nodes)
	}
	if nodes[1].URL != "https://x.test/m.png" {
		t.Errorf("image url = %q", nodes[1].URL)
	}
	if nodes[2].Text != "." {
		t.Errorf("trailing text = %q", nodes[2].Text)
	}
}

func TestRender_CommaSeparatedImages(t *testing.T) {
	nodes := Render("https://x.test/a.png,https://x.test/b.png")
	want := []Node{
		{Kind: KindImage, URL: "https://x.test/a.png"},
		{Kind: KindText, Text: ","},
		{Kind: KindImage, URL: "https://x.test/b.png"},
	}
	if !reflect.DeepEqual(nodes, want) {
		t.Errorf("nodes = %#v", nodes)
	}
}

func TestRender_NotAnImageWhenExtensionContinues(t *testing.T) {
	nodes := Render("archive https://x.test/a.png.zip here")
	if len(Images(nodes)) != 0 {
		t.Errorf("a.png.zip is not an image: %#v", nodes)
	}
}

func TestRender_MixedOrder(t *testing.T) {
	nodes := Render("[site](https://x.test) then https://x.test/p.gif then [doc](https://x.test/d)")
	var kinds []Kind
	for _, n := range nodes {
		kinds = append(kinds, n.Kind)
	}
	want := []Kind{KindLink, KindText, KindImage, KindText, KindLink}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
}

func TestRender_PlainAndEmpty(t *testing.T) {
	if got := Render(""); len(got) != 0 {
		t.Errorf("empty content = %#v", got)
	}
	got := Render("nothing special")
	if len(got) != 1 || got[0].Kind != KindText || got[0].Text != "nothing special" {
		t.Errorf("plain = %#v", got)
	}
}

func TestRenderSections(t *testing.T) {
	out := RenderSections([]brief.Section{
		{Title: "References:", Content: "Image: https://x.test/r.png"},
		{Title: "Conclusion:", Content: "Bye"},
	})
	if len(out) != 2 || out[0].Title != "References:" {
		t.Fatalf("rendered = %#v", out)
	}
	if imgs := Images(out[0].Nodes); len(imgs) != 1 || imgs[0] != "https://x.test/r.png" {
		t.Errorf("images = %v", imgs)
	}
}
