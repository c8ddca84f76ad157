package utils

import "testing"

func TestExtractLinks(t *testing.T) {
	links := ExtractLinks("check https://example.com/a and http://other.org plus discord.gg/abc123")
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %d: %v", len(links), links)
	}
	if links[2] != "discord.gg/abc123" {
		t.Fatalf("unexpected invite link: %s", links[2])
	}

	if links := ExtractLinks("no links in here, just example.com text"); len(links) != 0 {
		t.Fatalf("expected nothing, got %v", links)
	}
}

func TestLinkDomain(t *testing.T) {
	domain, err := LinkDomain("https://Example.COM/path?x=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "example.com" {
		t.Fatalf("unexpected domain: %s", domain)
	}

	domain, err = LinkDomain("discord.gg/abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "discord.gg" {
		t.Fatalf("unexpected domain: %s", domain)
	}
}

func TestLinkDomainPunycode(t *testing.T) {
	domain, err := LinkDomain("https://bücher.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if domain != "xn--bcher-kva.example" {
		t.Fatalf("unexpected domain: %s", domain)
	}
}
