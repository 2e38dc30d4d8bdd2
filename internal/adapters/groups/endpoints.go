package groups

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	perr "rankbot/internal/platform/errors"
)

// pageLimit is the membership page size; the largest the remote accepts
const pageLimit = 100

// userAlreadyHasRoleCode is the remote application code returned when the
// member already holds the requested role. The desired state already holds,
// so mutations reporting it are treated as success
const userAlreadyHasRoleCode = 26

// Verify checks the configured credential by fetching the authenticated user.
// An invalid or expired cookie surfaces as an Unauthorized coded error
func (c *Client) Verify(ctx context.Context) (AuthenticatedUser, error) {
	u := c.opts.UsersURL + "/v1/users/authenticated"
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return AuthenticatedUser{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return AuthenticatedUser{}, c.statusErr(resp, "verify")
	}
	var out AuthenticatedUser
	if err := c.decode(resp, u, &out); err != nil {
		return AuthenticatedUser{}, err
	}
	return out, nil
}

// GroupRoles lists all roles of a group
func (c *Client) GroupRoles(ctx context.Context, groupID int64) ([]Role, error) {
	u := fmt.Sprintf("%s/v1/groups/%d/roles", c.opts.BaseURL, groupID)
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusErr(resp, "roles")
	}
	var out rolesWire
	if err := c.decode(resp, u, &out); err != nil {
		return nil, err
	}
	return out.Roles, nil
}

// RolePage fetches one page of members holding roleID, in the remote's
// native order. An empty cursor starts from the beginning; the returned
// cursor is empty on the last page
func (c *Client) RolePage(ctx context.Context, groupID, roleID int64, cursor string) ([]MemberRow, string, error) {
	u := fmt.Sprintf("%s/v1/groups/%d/roles/%d/users?limit=%d&sortOrder=Asc", c.opts.BaseURL, groupID, roleID, pageLimit)
	if cursor != "" {
		u += "&cursor=" + url.QueryEscape(cursor)
	}
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", c.statusErr(resp, "role page")
	}
	var out rolePageWire
	if err := c.decode(resp, u, &out); err != nil {
		return nil, "", err
	}
	return out.Data, out.NextPageCursor, nil
}

// UserDetails fetches a user document, including the account created timestamp
func (c *Client) UserDetails(ctx context.Context, userID int64) (User, error) {
	u := fmt.Sprintf("%s/v1/users/%d", c.opts.UsersURL, userID)
	resp, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return User{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return User{}, c.statusErr(resp, "user details")
	}
	var out User
	if err := c.decode(resp, u, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// SetMemberRole moves userID to roleID within the group.
// Reports success when the member already holds the role
func (c *Client) SetMemberRole(ctx context.Context, groupID, userID, roleID int64) error {
	u := fmt.Sprintf("%s/v1/groups/%d/users/%d", c.opts.BaseURL, groupID, userID)
	body, err := json.Marshal(map[string]int64{"roleId": roleID})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "groups marshal set-role body")
	}
	resp, err := c.do(ctx, http.MethodPatch, u, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return drainAndClose(resp.Body)
	}
	serr := c.statusErr(resp, "set role")
	if RemoteCodeOf(serr) == userAlreadyHasRoleCode {
		return nil
	}
	return serr
}

// decode unmarshals a bounded response body and always closes it
func (c *Client) decode(resp *http.Response, u string, out any) error {
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("url", u).Msg("groups close body failed")
		}
	}()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "groups read body failed")
	}
	if err := json.Unmarshal(b, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "groups decode failed")
	}
	return nil
}
