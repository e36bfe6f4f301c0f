package registry

import "context"

// DocumentCategories fetches the document category lookup list.
func (c *Client) DocumentCategories(ctx context.Context) ([]LookupOption, error) {
	var opts []LookupOption
	if err := c.getJSON(ctx, "/document-categories/", "category list", &opts); err != nil {
		return nil, err
	}

	return opts, nil
}

// IssuingAuthorities fetches the issuing authority lookup list.
func (c *Client) IssuingAuthorities(ctx context.Context) ([]LookupOption, error) {
	var opts []LookupOption
	if err := c.getJSON(ctx, "/issuing-authorities/", "authority list", &opts); err != nil {
		return nil, err
	}

	return opts, nil
}
