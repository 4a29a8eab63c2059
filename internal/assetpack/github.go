package assetpack

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubClient wraps the GitHub API client for release scanning.
type GitHubClient struct {
	client *github.Client
}

// GitHubRelease represents a GitHub release with its pack assets.
type GitHubRelease struct {
	TagName     string
	Name        string
	PublishedAt time.Time
	Assets      []GitHubAsset
	HTMLURL     string
}

// GitHubAsset represents a downloadable release asset.
type GitHubAsset struct {
	Name        string
	DownloadURL string
	Size        int64
}

// NewGitHubClient creates a GitHub API client.
// Uses GITHUB_TOKEN environment variable if available for higher rate limits.
func NewGitHubClient() *GitHubClient {
	var client *github.Client

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(context.Background(), ts)
		client = github.NewClient(tc)
	} else {
		client = github.NewClient(nil)
	}

	return &GitHubClient{client: client}
}

// GetReleases fetches releases from a GitHub repository.
// versionSpec can be "latest", "all", or a specific tag like "v1.2.0".
func (g *GitHubClient) GetReleases(ctx context.Context, owner, repo, versionSpec string) ([]GitHubRelease, error) {
	switch versionSpec {
	case "latest":
		release, _, err := g.client.Repositories.GetLatestRelease(ctx, owner, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest release: %w", err)
		}
		return []GitHubRelease{convertRelease(release)}, nil

	case "all":
		var allReleases []GitHubRelease
		opts := &github.ListOptions{PerPage: 100}

		for {
			releases, resp, err := g.client.Repositories.ListReleases(ctx, owner, repo, opts)
			if err != nil {
				return nil, fmt.Errorf("failed to list releases: %w", err)
			}

			for _, release := range releases {
				if release.GetPrerelease() {
					continue
				}
				allReleases = append(allReleases, convertRelease(release))
			}

			if resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}

		return allReleases, nil

	default:
		// Specific tag
		release, _, err := g.client.Repositories.GetReleaseByTag(ctx, owner, repo, versionSpec)
		if err != nil {
			return nil, fmt.Errorf("failed to get release %s: %w", versionSpec, err)
		}
		return []GitHubRelease{convertRelease(release)}, nil
	}
}

// convertRelease converts a GitHub API release to our internal format.
func convertRelease(release *github.RepositoryRelease) GitHubRelease {
	r := GitHubRelease{
		TagName:     release.GetTagName(),
		Name:        release.GetName(),
		PublishedAt: release.GetPublishedAt().Time,
		HTMLURL:     release.GetHTMLURL(),
	}

	for _, asset := range release.Assets {
		r.Assets = append(r.Assets, GitHubAsset{
			Name:        asset.GetName(),
			DownloadURL: asset.GetBrowserDownloadURL(),
			Size:        int64(asset.GetSize()),
		})
	}

	return r
}

// ParseGitHubRepo parses an "owner/repo" string.
func ParseGitHubRepo(repoStr string) (owner, repo string, err error) {
	parts := strings.Split(repoStr, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format '%s', expected 'owner/repo'", repoStr)
	}
	return parts[0], parts[1], nil
}
